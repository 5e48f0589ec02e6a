package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/gym-management/internal/model"
	"github.com/iliyamo/gym-management/internal/reset"
	"github.com/iliyamo/gym-management/internal/utils"
)

// AdminRepo persists gym owner accounts and their password-reset state.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

var (
	// ErrAdminExists is returned when the email or contact is already taken.
	ErrAdminExists = errors.New("email or contact already exists")
	// ErrAdminNotFound is returned when an admin lookup misses.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrResetTokenInvalid is returned by ConsumeResetToken when the
	// presented token is unknown, already used or expired.
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)

const adminCols = `id, name, email, contact, password_hash, gym_name, address,
	reset_otp_hash, reset_otp_expires_at, reset_otp_attempts, reset_locked_until,
	reset_token_hash, reset_token_expires_at, created_at, updated_at`

// Create inserts an admin and returns its ID. The plain password is
// hashed here with the given bcrypt cost, mirroring how user creation
// works everywhere else in the repository layer.
func (r *AdminRepo) Create(ctx context.Context, name, email, contact, password, gymName, address string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins (name, email, contact, password_hash, gym_name, address) VALUES (?,?,?,?,?,?)",
		name, email, contact, hash, gymName, address)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrAdminExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an admin by normalized email.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (model.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+adminCols+" FROM admins WHERE email=? LIMIT 1", email)
}

// GetByID fetches an admin by id.
func (r *AdminRepo) GetByID(ctx context.Context, id uint64) (model.Admin, error) {
	return r.get(ctx, "SELECT "+adminCols+" FROM admins WHERE id=? LIMIT 1", id)
}

func (r *AdminRepo) get(ctx context.Context, q string, arg interface{}) (model.Admin, error) {
	var (
		a           model.Admin
		otpExp      sql.NullTime
		lockedUntil sql.NullTime
		tokenExp    sql.NullTime
		otpHash     sql.NullString
		tokenHash   sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&a.ID, &a.Name, &a.Email, &a.Contact, &a.PasswordHash, &a.GymName, &a.Address,
		&otpHash, &otpExp, &a.ResetOTPAttempts, &lockedUntil,
		&tokenHash, &tokenExp, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Admin{}, ErrAdminNotFound
		}
		return model.Admin{}, err
	}
	a.ResetOTPHash = otpHash.String
	a.ResetTokenHash = tokenHash.String
	if otpExp.Valid {
		t := otpExp.Time
		a.ResetOTPExpiresAt = &t
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		a.ResetLockedUntil = &t
	}
	if tokenExp.Valid {
		t := tokenExp.Time
		a.ResetTokenExpiresAt = &t
	}
	return a, nil
}

// ResetChallenge extracts the reset state machine value from a loaded
// admin row.
func ResetChallenge(a model.Admin) reset.Challenge {
	return reset.Challenge{
		CodeHash:    a.ResetOTPHash,
		ExpiresAt:   a.ResetOTPExpiresAt,
		Attempts:    a.ResetOTPAttempts,
		LockedUntil: a.ResetLockedUntil,
	}
}

// SaveResetChallenge writes the challenge columns for an admin in one
// statement so the state is never half-updated.
func (r *AdminRepo) SaveResetChallenge(ctx context.Context, adminID uint64, ch reset.Challenge) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE admins SET reset_otp_hash=?, reset_otp_expires_at=?, reset_otp_attempts=?, reset_locked_until=? WHERE id=?`,
		nullStr(ch.CodeHash), nullTime(ch.ExpiresAt), ch.Attempts, nullTime(ch.LockedUntil), adminID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		// id did not match any row; the values may also have been
		// identical, so confirm existence before reporting not found
		if _, gerr := r.GetByID(ctx, adminID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// SaveResetToken stores the hash and expiry of the single-use token
// handed out after a successful OTP verification.
func (r *AdminRepo) SaveResetToken(ctx context.Context, adminID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET reset_token_hash=?, reset_token_expires_at=? WHERE id=?",
		tokenHash, exp, adminID)
	return err
}

// ConsumeResetToken atomically validates and clears the reset token.
// The single UPDATE guards against the token being used twice: only the
// first caller matches the stored hash.
func (r *AdminRepo) ConsumeResetToken(ctx context.Context, adminID uint64, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE admins SET reset_token_hash=NULL, reset_token_expires_at=NULL
		 WHERE id=? AND reset_token_hash=? AND reset_token_expires_at > NOW()`,
		adminID, tokenHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrResetTokenInvalid
	}
	return nil
}

// UpdatePassword stores a new bcrypt hash for the admin.
func (r *AdminRepo) UpdatePassword(ctx context.Context, adminID uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET password_hash=? WHERE id=?", passwordHash, adminID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
