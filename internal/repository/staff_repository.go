package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/gym-management/internal/model"
	"github.com/iliyamo/gym-management/internal/utils"
)

// StaffRepo persists delegated staff accounts. Every staff row belongs
// to one admin via created_by.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

var (
	// ErrStaffExists is returned when the email is already taken.
	ErrStaffExists = errors.New("staff email already exists")
	// ErrStaffNotFound is returned when a staff lookup misses.
	ErrStaffNotFound = errors.New("staff not found")
)

const staffCols = "id, created_by, name, email, contact, password_hash, role, permission, created_at, updated_at"

// Create inserts a staff account under the given admin and returns its ID.
func (r *StaffRepo) Create(ctx context.Context, adminID uint64, name, email, contact, password, role, perm string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff (created_by, name, email, contact, password_hash, role, permission) VALUES (?,?,?,?,?,?,?)",
		adminID, name, email, contact, hash, role, perm)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrStaffExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a staff account by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+staffCols+" FROM staff WHERE email=? LIMIT 1", email)
}

// GetByID fetches a staff account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (model.Staff, error) {
	return r.get(ctx, "SELECT "+staffCols+" FROM staff WHERE id=? LIMIT 1", id)
}

func (r *StaffRepo) get(ctx context.Context, q string, arg interface{}) (model.Staff, error) {
	var s model.Staff
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&s.ID, &s.CreatedBy, &s.Name, &s.Email, &s.Contact, &s.PasswordHash,
		&s.Role, &s.Permission, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Staff{}, ErrStaffNotFound
	}
	return s, err
}

// ListByAdmin returns all staff accounts owned by the admin, newest first.
func (r *StaffRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Staff, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+staffCols+" FROM staff WHERE created_by=? ORDER BY created_at DESC", adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Staff, 0)
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.CreatedBy, &s.Name, &s.Email, &s.Contact,
			&s.PasswordHash, &s.Role, &s.Permission, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update changes the mutable fields of a staff account. Empty strings
// leave the stored value untouched, so a partial PATCH cannot blank a
// column or wipe the permission tier. The row must belong to the given
// admin; a miss on either id or owner yields ErrStaffNotFound so
// cross-owner probing cannot distinguish the two.
func (r *StaffRepo) Update(ctx context.Context, adminID, staffID uint64, name, contact, role, perm string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE staff SET name=COALESCE(NULLIF(?,''),name), contact=COALESCE(NULLIF(?,''),contact), role=COALESCE(NULLIF(?,''),role), permission=COALESCE(NULLIF(?,''),permission) WHERE id=? AND created_by=?",
		name, contact, role, perm, staffID, adminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish no-op updates from missing rows
		var id uint64
		err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM staff WHERE id=? AND created_by=? LIMIT 1", staffID, adminID).Scan(&id)
		if err == sql.ErrNoRows {
			return ErrStaffNotFound
		}
		return err
	}
	return nil
}

// DeleteByIDAndAdmin removes a staff account owned by the admin.
func (r *StaffRepo) DeleteByIDAndAdmin(ctx context.Context, staffID, adminID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM staff WHERE id=? AND created_by=?", staffID, adminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaffNotFound
	}
	return nil
}
