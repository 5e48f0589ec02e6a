package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gym-management/internal/model"
)

// ErrPlanNotFound is returned when a plan lookup fails.
var ErrPlanNotFound = errors.New("plan not found")

// ErrPlanExists is returned when an identical plan tuple already exists
// in the owner's catalog.
var ErrPlanExists = errors.New("identical plan already exists")

// PlanRepo provides methods to create, resolve and delete membership
// plans. The duplicate-tuple guard is scoped per owner so two gyms can
// independently sell identically shaped plans.
type PlanRepo struct {
	db *sql.DB
}

// NewPlanRepo constructs a PlanRepo with the given DB handle.
func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{db: db} }

const planCols = "id, created_by, name, duration_type, duration, amount, created_at, updated_at"

// Create inserts a new plan after checking the owner's catalog for an
// identical (name, duration_type, duration, amount) tuple. The check
// and insert are not atomic; concurrent identical submissions can race,
// which the schema's unique key backstops.
func (r *PlanRepo) Create(ctx context.Context, p *model.Plan) error {
	var existing uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM plans WHERE created_by=? AND name=? AND duration_type=? AND duration=? AND amount=? LIMIT 1`,
		p.CreatedBy, p.Name, p.DurationType, p.Duration, p.Amount).Scan(&existing)
	if err == nil {
		return ErrPlanExists
	}
	if err != sql.ErrNoRows {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO plans (created_by, name, duration_type, duration, amount) VALUES (?,?,?,?,?)",
		p.CreatedBy, p.Name, p.DurationType, p.Duration, p.Amount)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrPlanExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT "+planCols+" FROM plans WHERE id=?", p.ID).
		Scan(&p.ID, &p.CreatedBy, &p.Name, &p.DurationType, &p.Duration, &p.Amount, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID fetches a plan by id.
func (r *PlanRepo) GetByID(ctx context.Context, id uint64) (model.Plan, error) {
	var p model.Plan
	err := r.db.QueryRowContext(ctx,
		"SELECT "+planCols+" FROM plans WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.CreatedBy, &p.Name, &p.DurationType, &p.Duration, &p.Amount, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Plan{}, ErrPlanNotFound
	}
	return p, err
}

// ListByAdmin returns the admin's plan catalog, newest first.
func (r *PlanRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+planCols+" FROM plans WHERE created_by=? ORDER BY created_at DESC", adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Plan, 0)
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.CreatedBy, &p.Name, &p.DurationType, &p.Duration,
			&p.Amount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteByIDAndOwner removes a plan owned by the admin. Deletion is
// refused with ErrConflict while members still reference the plan;
// sql.ErrNoRows is surfaced as ErrPlanNotFound.
func (r *PlanRepo) DeleteByIDAndOwner(ctx context.Context, planID, adminID uint64) error {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM plans WHERE id=? AND created_by=? LIMIT 1", planID, adminID).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrPlanNotFound
	}
	if err != nil {
		return err
	}
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM members WHERE plan_id=?", planID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM plans WHERE id=? AND created_by=?", planID, adminID)
	return err
}
