package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-management/internal/config"
	"github.com/iliyamo/gym-management/internal/repository"
	"github.com/iliyamo/gym-management/internal/reset"
)

func newResetHandler(t *testing.T) (*ResetHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{
		BcryptCost:       4,
		OTPExpireMin:     15,
		OTPMaxAttempts:   5,
		OTPLockMin:       15,
		ResetTokenTTLMin: 10,
	}
	h := NewResetHandler(cfg, repository.NewAdminRepo(db), repository.NewTokenRepo(db), nil)
	return h, mock
}

// adminResetRow builds an admin row with explicit reset-challenge columns.
func adminResetRow(id uint64, otpHash interface{}, otpExp interface{}, attempts int, lockedUntil interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "contact", "password_hash", "gym_name", "address",
		"reset_otp_hash", "reset_otp_expires_at", "reset_otp_attempts", "reset_locked_until",
		"reset_token_hash", "reset_token_expires_at", "created_at", "updated_at",
	}).AddRow(id, "Owner", "owner@example.com", "9111111111", "$2a$10$hash", "Iron Temple", "Main St",
		otpHash, otpExp, attempts, lockedUntil, nil, nil, testTime, testTime)
}

func TestVerifyOtpSuccessIssuesResetToken(t *testing.T) {
	h, mock := newResetHandler(t)

	exp := time.Now().UTC().Add(10 * time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE email=?")).
		WithArgs("owner@example.com").
		WillReturnRows(adminResetRow(1, reset.HashCode("123456"), exp, 0, nil))
	// challenge cleared on success
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET reset_otp_hash=?")).
		WithArgs(nil, nil, 0, nil, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET reset_token_hash=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"email":"owner@example.com","otp":"123456"}`
	rec := doJSON(t, http.MethodPost, "/admin/verifyOtp", body, h.VerifyOTP)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resetToken")
	assert.Contains(t, rec.Body.String(), `"adminId":1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOtpMismatchCountsAttempt(t *testing.T) {
	h, mock := newResetHandler(t)

	exp := time.Now().UTC().Add(10 * time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE email=?")).
		WillReturnRows(adminResetRow(1, reset.HashCode("123456"), exp, 0, nil))
	// attempt counter persisted even on failure
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET reset_otp_hash=?")).
		WithArgs(reset.HashCode("123456"), sqlmock.AnyArg(), 1, nil, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"email":"owner@example.com","otp":"000000"}`
	rec := doJSON(t, http.MethodPost, "/admin/verifyOtp", body, h.VerifyOTP)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOtpWhileLockedIsRateLimited(t *testing.T) {
	h, mock := newResetHandler(t)

	locked := time.Now().UTC().Add(10 * time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE email=?")).
		WillReturnRows(adminResetRow(1, nil, nil, 5, locked))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET reset_otp_hash=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"email":"owner@example.com","otp":"123456"}`
	rec := doJSON(t, http.MethodPost, "/admin/verifyOtp", body, h.VerifyOTP)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordConsumesTokenOnce(t *testing.T) {
	h, mock := newResetHandler(t)

	// first call: token matches, is cleared, password rehashed, sessions revoked
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET reset_token_hash=NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET password_hash=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=NOW()")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	body := `{"adminId":1,"resetToken":"rawtoken","password":"n3w-secret"}`
	rec := doJSON(t, http.MethodPatch, "/admin/updatePassword", body, h.UpdatePassword)
	require.Equal(t, http.StatusOK, rec.Code)

	// second call with the same token: the atomic update matches nothing
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET reset_token_hash=NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec = doJSON(t, http.MethodPatch, "/admin/updatePassword", body, h.UpdatePassword)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "reset token invalid")
	assert.NoError(t, mock.ExpectationsWereMet())
}
