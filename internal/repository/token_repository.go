package repository

import (
	"context"
	"database/sql"
	"time"
)

// Subject types for refresh tokens. Admin and staff ids live in
// separate tables, so the pair (subject_type, subject_id) identifies a
// principal.
const (
	SubjectAdmin = "ADMIN"
	SubjectStaff = "STAFF"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row for the given principal.
func (r *TokenRepo) StoreRefresh(ctx context.Context, subjectType string, subjectID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (subject_type, subject_id, token_hash, expires_at) VALUES (?,?,?,?)",
		subjectType, subjectID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the subject id if a non-revoked, non-expired
// token of the given type exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, subjectType, tokenHash string) (uint64, error) {
	var (
		subjectID uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT subject_id, expires_at, revoked_at FROM refresh_tokens WHERE subject_type=? AND token_hash=? LIMIT 1",
		subjectType, tokenHash).Scan(&subjectID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return 0, sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	return subjectID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllFor revokes every active token of one principal. Used on
// logout and after a password reset.
func (r *TokenRepo) RevokeAllFor(ctx context.Context, subjectType string, subjectID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE subject_type=? AND subject_id=? AND revoked_at IS NULL",
		subjectType, subjectID)
	return err
}
