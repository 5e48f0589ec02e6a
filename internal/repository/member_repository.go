package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/gym-management/internal/model"
)

// MemberRepo provides CRUD operations for gym members. Member creation
// and renewal write a companion payment row, so the mutating methods
// come in *Tx variants and the handler owns the transaction; the
// founding-payment guarantee (no member without its first payment)
// depends on both writes committing together.
type MemberRepo struct {
	db *sql.DB
}

// NewMemberRepo returns a new MemberRepo bound to the given database.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning members and payments.
func (r *MemberRepo) DB() *sql.DB { return r.db }

var (
	// ErrMemberExists is returned when the contact or email is already
	// registered. The uniqueness check is an OR: either field matching
	// an existing member is a conflict.
	ErrMemberExists = errors.New("contact or email already registered")
	// ErrMemberNotFound is returned when a member lookup misses or the
	// member belongs to a different admin.
	ErrMemberNotFound = errors.New("member not found")
)

const memberCols = `id, created_by, created_by_staff, name, contact, email, gender, batch, address,
	plan_id, join_date, admission_amount, discount, collected_amount, due_amount, created_at, updated_at`

// ExistsByContactOrEmail reports whether any member already uses the
// contact or the email. Check-then-insert; the unique keys on both
// columns backstop concurrent identical submissions.
func (r *MemberRepo) ExistsByContactOrEmail(ctx context.Context, contact, email string) (bool, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM members WHERE contact=? OR email=? LIMIT 1", contact, email).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a new member within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record. The caller must commit or rollback.
func (r *MemberRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Member) error {
	const q = `INSERT INTO members
		(created_by, created_by_staff, name, contact, email, gender, batch, address,
		 plan_id, join_date, admission_amount, discount, collected_amount, due_amount)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		m.CreatedBy, m.CreatedByStaff, m.Name, m.Contact, m.Email, m.Gender, m.Batch, m.Address,
		m.PlanID, m.JoinDate, m.AdmissionAmount, m.Discount, m.CollectedAmount, m.DueAmount)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrMemberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	// Query back the row to populate timestamps and defaults.
	return tx.QueryRowContext(ctx,
		"SELECT "+memberCols+" FROM members WHERE id=?", m.ID).Scan(
		&m.ID, &m.CreatedBy, &m.CreatedByStaff, &m.Name, &m.Contact, &m.Email, &m.Gender,
		&m.Batch, &m.Address, &m.PlanID, &m.JoinDate, &m.AdmissionAmount, &m.Discount,
		&m.CollectedAmount, &m.DueAmount, &m.CreatedAt, &m.UpdatedAt)
}

// GetByIDForOwner returns a member scoped to its owning admin. A miss
// on either id or owner yields ErrMemberNotFound, so a member belonging
// to a different gym is indistinguishable from a missing one.
func (r *MemberRepo) GetByIDForOwner(ctx context.Context, memberID, adminID uint64) (model.Member, error) {
	var m model.Member
	err := r.db.QueryRowContext(ctx,
		"SELECT "+memberCols+" FROM members WHERE id=? AND created_by=? LIMIT 1",
		memberID, adminID).Scan(
		&m.ID, &m.CreatedBy, &m.CreatedByStaff, &m.Name, &m.Contact, &m.Email, &m.Gender,
		&m.Batch, &m.Address, &m.PlanID, &m.JoinDate, &m.AdmissionAmount, &m.Discount,
		&m.CollectedAmount, &m.DueAmount, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Member{}, ErrMemberNotFound
	}
	return m, err
}

// RenewTx applies a membership renewal within an existing transaction:
// new plan, batch, join date, additively collected amount, recomputed
// due and the attribution of whoever performed the renewal.
func (r *MemberRepo) RenewTx(ctx context.Context, tx *sql.Tx, memberID uint64, planID uint64, batch string, joinDate time.Time, collectedTotal, due int64, staffID *uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE members SET plan_id=?, batch=?, join_date=?, collected_amount=?, due_amount=?, created_by_staff=?
		 WHERE id=?`,
		planID, batch, joinDate, collectedTotal, due, staffID, memberID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// DeleteTx removes the member row inside the caller's transaction. The
// member's payments must be deleted first (see PaymentRepo.DeleteByMemberTx).
func (r *MemberRepo) DeleteTx(ctx context.Context, tx *sql.Tx, memberID uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM members WHERE id=?", memberID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// MemberDetail is the denormalized member view returned to clients: the
// member row joined with its active plan.
type MemberDetail struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Contact         string  `json:"contact"`
	Email           string  `json:"email"`
	Gender          string  `json:"gender"`
	Batch           string  `json:"batch"`
	Address         string  `json:"address"`
	JoinDate        string  `json:"join_date"`
	AdmissionAmount int64   `json:"admission_amount"`
	Discount        int64   `json:"discount"`
	CollectedAmount int64   `json:"collected_amount"`
	DueAmount       int64   `json:"due_amount"`
	CreatedByStaff  *uint64 `json:"created_by_staff,omitempty"`
	PlanID          uint64  `json:"plan_id"`
	PlanName        string  `json:"plan_name"`
	PlanDuration    uint32  `json:"plan_duration"`
	PlanDurType     string  `json:"plan_duration_type"`
	PlanAmount      int64   `json:"plan_amount"`
}

const memberDetailQ = `SELECT m.id, m.name, m.contact, m.email, m.gender, m.batch, m.address,
		m.join_date, m.admission_amount, m.discount, m.collected_amount, m.due_amount, m.created_by_staff,
		p.id, p.name, p.duration, p.duration_type, p.amount
	FROM members m
	JOIN plans p ON p.id = m.plan_id`

func scanMemberDetail(scan func(dest ...interface{}) error) (MemberDetail, error) {
	var d MemberDetail
	var joinDate time.Time
	err := scan(&d.ID, &d.Name, &d.Contact, &d.Email, &d.Gender, &d.Batch, &d.Address,
		&joinDate, &d.AdmissionAmount, &d.Discount, &d.CollectedAmount, &d.DueAmount, &d.CreatedByStaff,
		&d.PlanID, &d.PlanName, &d.PlanDuration, &d.PlanDurType, &d.PlanAmount)
	if err != nil {
		return MemberDetail{}, err
	}
	d.JoinDate = joinDate.UTC().Format("2006-01-02")
	return d, nil
}

// GetDetail loads the joined member+plan view for one member scoped to
// its owning admin.
func (r *MemberRepo) GetDetail(ctx context.Context, memberID, adminID uint64) (MemberDetail, error) {
	row := r.db.QueryRowContext(ctx, memberDetailQ+" WHERE m.id = ? AND m.created_by = ?", memberID, adminID)
	d, err := scanMemberDetail(row.Scan)
	if err == sql.ErrNoRows {
		return MemberDetail{}, ErrMemberNotFound
	}
	return d, err
}

// ListByAdmin returns all members of one gym joined with their plans,
// newest first.
func (r *MemberRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]MemberDetail, error) {
	rows, err := r.db.QueryContext(ctx, memberDetailQ+" WHERE m.created_by = ? ORDER BY m.created_at DESC", adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MemberDetail, 0)
	for rows.Next() {
		d, err := scanMemberDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
