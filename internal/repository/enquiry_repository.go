package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gym-management/internal/model"
)

var (
	// ErrEnquiryExists is returned when an equivalent open enquiry is
	// already on file for the owner.
	ErrEnquiryExists = errors.New("equivalent open enquiry already exists")
	// ErrEnquiryNotFound is returned when an enquiry lookup misses.
	ErrEnquiryNotFound = errors.New("enquiry not found")
	// ErrEnquiryClosed is returned when a status change is attempted on
	// a closed enquiry; closed is terminal.
	ErrEnquiryClosed = errors.New("enquiry is closed")
)

// EnquiryRepo persists prospect enquiries and drives their one-way
// open → closed state machine.
type EnquiryRepo struct {
	db *sql.DB
}

func NewEnquiryRepo(db *sql.DB) *EnquiryRepo { return &EnquiryRepo{db: db} }

const enquiryCols = "id, created_by, staff_id, updated_by, name, contact, remark, follow_up_date, category, status, created_at, updated_at"

// Create inserts an enquiry in the open state after rejecting a
// duplicate open enquiry with the same (name, contact, follow_up_date,
// category) for the owner.
func (r *EnquiryRepo) Create(ctx context.Context, e *model.Enquiry) error {
	var existing uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM enquiries
		 WHERE created_by=? AND name=? AND contact=? AND follow_up_date=? AND category=? AND status=? LIMIT 1`,
		e.CreatedBy, e.Name, e.Contact, e.FollowUpDate, e.Category, model.EnquiryOpen).Scan(&existing)
	if err == nil {
		return ErrEnquiryExists
	}
	if err != sql.ErrNoRows {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO enquiries (created_by, staff_id, name, contact, remark, follow_up_date, category, status)
		 VALUES (?,?,?,?,?,?,?,?)`,
		e.CreatedBy, e.StaffID, e.Name, e.Contact, e.Remark, e.FollowUpDate, e.Category, model.EnquiryOpen)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.Status = model.EnquiryOpen
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM enquiries WHERE id=?", e.ID).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// GetByIDForOwner returns an enquiry scoped to its owning admin.
func (r *EnquiryRepo) GetByIDForOwner(ctx context.Context, enquiryID, adminID uint64) (model.Enquiry, error) {
	var e model.Enquiry
	err := r.db.QueryRowContext(ctx,
		"SELECT "+enquiryCols+" FROM enquiries WHERE id=? AND created_by=? LIMIT 1",
		enquiryID, adminID).Scan(
		&e.ID, &e.CreatedBy, &e.StaffID, &e.UpdatedBy, &e.Name, &e.Contact, &e.Remark,
		&e.FollowUpDate, &e.Category, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Enquiry{}, ErrEnquiryNotFound
	}
	return e, err
}

// UpdateStatus transitions an open enquiry to the given status and
// records who did it. A closed enquiry rejects any further change with
// ErrEnquiryClosed.
func (r *EnquiryRepo) UpdateStatus(ctx context.Context, enquiryID, adminID uint64, status string, updatedBy uint64) error {
	cur, err := r.GetByIDForOwner(ctx, enquiryID, adminID)
	if err != nil {
		return err
	}
	if cur.Status == model.EnquiryClosed {
		return ErrEnquiryClosed
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE enquiries SET status=?, updated_by=? WHERE id=?",
		status, updatedBy, enquiryID)
	return err
}

// ListByAdmin returns the admin's enquiries, open first, then newest.
func (r *EnquiryRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Enquiry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+enquiryCols+" FROM enquiries WHERE created_by=? ORDER BY status ASC, created_at DESC", adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Enquiry, 0)
	for rows.Next() {
		var e model.Enquiry
		if err := rows.Scan(&e.ID, &e.CreatedBy, &e.StaffID, &e.UpdatedBy, &e.Name, &e.Contact,
			&e.Remark, &e.FollowUpDate, &e.Category, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteByIDAndOwner removes an enquiry owned by the admin.
func (r *EnquiryRepo) DeleteByIDAndOwner(ctx context.Context, enquiryID, adminID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM enquiries WHERE id=? AND created_by=?", enquiryID, adminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEnquiryNotFound
	}
	return nil
}
