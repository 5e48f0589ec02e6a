package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-management/internal/repository"
)

// ----- shared test helpers -----

func newMockDB(t *testing.T) (sqlmock.Sqlmock, *repository.AdminRepo, *repository.StaffRepo, *repository.MemberRepo, *repository.PlanRepo, *repository.PaymentRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock,
		repository.NewAdminRepo(db),
		repository.NewStaffRepo(db),
		repository.NewMemberRepo(db),
		repository.NewPlanRepo(db),
		repository.NewPaymentRepo(db)
}

// doJSON runs a handler against a synthetic request and returns the recorder.
func doJSON(t *testing.T, method, target, body string, fn echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, fn(c))
	return rec
}

var testTime = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func adminRow(id uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "contact", "password_hash", "gym_name", "address",
		"reset_otp_hash", "reset_otp_expires_at", "reset_otp_attempts", "reset_locked_until",
		"reset_token_hash", "reset_token_expires_at", "created_at", "updated_at",
	}).AddRow(id, "Owner", "owner@example.com", "9111111111", "$2a$10$hash", "Iron Temple", "Main St",
		nil, nil, 0, nil, nil, nil, testTime, testTime)
}

func staffRow(id, adminID uint64, perm string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_by", "name", "email", "contact", "password_hash",
		"role", "permission", "created_at", "updated_at",
	}).AddRow(id, adminID, "Riya", "riya@example.com", "9222222222", "$2a$10$hash",
		"receptionist", perm, testTime, testTime)
}

func planRow(id, adminID uint64, name string, amount int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_by", "name", "duration_type", "duration", "amount", "created_at", "updated_at",
	}).AddRow(id, adminID, name, "months", 1, amount, testTime, testTime)
}

func expectAdminLookup(mock sqlmock.Sqlmock, id uint64) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE id=?")).
		WithArgs(id).WillReturnRows(adminRow(id))
}

func expectPlanLookup(mock sqlmock.Sqlmock, planID, adminID uint64, amount int64) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id=? LIMIT 1")).
		WithArgs(planID).WillReturnRows(planRow(planID, adminID, "Basic", amount))
}

// ----- registration -----

const addMemberBody = `{
	"name":"Asha","contact":"9000000001","email":"asha@example.com",
	"gender":"female","batch":"morning","address":"12 Gym Lane",
	"plan":1,"joinDate":"2025-01-10",
	"admissionAmount":200,"discount":50,"collectedAmount":300,
	"createdBy":1,"currentUser":"Admin"}`

func TestAddMemberComputesDue(t *testing.T) {
	mock, admins, staff, members, plans, payments := newMockDB(t)
	h := NewMemberHandler(admins, staff, members, plans, payments)

	expectAdminLookup(mock, 1)
	expectPlanLookup(mock, 1, 1, 500)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM members WHERE contact=? OR email=?")).
		WithArgs("9000000001", "asha@example.com").WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO members")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_by", "created_by_staff", "name", "contact", "email", "gender", "batch", "address",
			"plan_id", "join_date", "admission_amount", "discount", "collected_amount", "due_amount",
			"created_at", "updated_at",
		}).AddRow(7, 1, nil, "Asha", "9000000001", "asha@example.com", "female", "morning", "12 Gym Lane",
			1, testTime, 200, 50, 300, 350, testTime, testTime))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM payments WHERE id=?")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(testTime))
	mock.ExpectCommit()

	rec := doJSON(t, http.MethodPost, "/member/addMember", addMemberBody, h.Add)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data struct {
			Member  memberPart  `json:"member"`
			Plan    planPart    `json:"plan"`
			Payment paymentPart `json:"payment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(350), resp.Data.Member.DueAmount)
	assert.Equal(t, int64(300), resp.Data.Payment.Amount)
	assert.Equal(t, uint64(7), resp.Data.Member.ID)
	// the joined plan rides along with the new member
	assert.Equal(t, "Basic", resp.Data.Plan.Name)
	assert.Equal(t, int64(500), resp.Data.Plan.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMemberRollsBackOnPaymentFailure(t *testing.T) {
	mock, admins, staff, members, plans, payments := newMockDB(t)
	h := NewMemberHandler(admins, staff, members, plans, payments)

	expectAdminLookup(mock, 1)
	expectPlanLookup(mock, 1, 1, 500)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM members WHERE contact=? OR email=?")).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO members")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_by", "created_by_staff", "name", "contact", "email", "gender", "batch", "address",
			"plan_id", "join_date", "admission_amount", "discount", "collected_amount", "due_amount",
			"created_at", "updated_at",
		}).AddRow(7, 1, nil, "Asha", "9000000001", "asha@example.com", "female", "morning", "12 Gym Lane",
			1, testTime, 200, 50, 300, 350, testTime, testTime))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(errors.New("payments table unavailable"))
	mock.ExpectRollback()

	rec := doJSON(t, http.MethodPost, "/member/addMember", addMemberBody, h.Add)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "rolled back")
	// the rollback expectation proves no member row survives the failure
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMemberDuplicateContactConflicts(t *testing.T) {
	mock, admins, staff, members, plans, payments := newMockDB(t)
	h := NewMemberHandler(admins, staff, members, plans, payments)

	expectAdminLookup(mock, 1)
	expectPlanLookup(mock, 1, 1, 500)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM members WHERE contact=? OR email=?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	rec := doJSON(t, http.MethodPost, "/member/addMember", addMemberBody, h.Add)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMemberViewTierDenied(t *testing.T) {
	mock, admins, staff, members, plans, payments := newMockDB(t)
	h := NewMemberHandler(admins, staff, members, plans, payments)

	mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE id=?")).
		WithArgs(uint64(4)).WillReturnRows(staffRow(4, 1, "view"))

	body := strings.Replace(addMemberBody, `"createdBy":1,"currentUser":"Admin"`,
		`"createdBy":4,"currentUser":"Staff"`, 1)
	rec := doJSON(t, http.MethodPost, "/member/addMember", body, h.Add)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient permission")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewDoesNotReapplyDiscount(t *testing.T) {
	mock, admins, staff, members, plans, payments := newMockDB(t)
	h := NewMemberHandler(admins, staff, members, plans, payments)

	expectAdminLookup(mock, 1)
	// existing member carries due 350 and a 50 discount from admission
	mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id=? AND created_by=?")).
		WithArgs(uint64(7), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_by", "created_by_staff", "name", "contact", "email", "gender", "batch", "address",
			"plan_id", "join_date", "admission_amount", "discount", "collected_amount", "due_amount",
			"created_at", "updated_at",
		}).AddRow(7, 1, nil, "Asha", "9000000001", "asha@example.com", "female", "morning", "12 Gym Lane",
			1, testTime, 200, 50, 300, 350, testTime, testTime))
	expectPlanLookup(mock, 2, 1, 600)

	mock.ExpectBegin()
	// due' = 350 + 600 - 400 = 550, collected total 300 + 400 = 700
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET plan_id=?")).
		WithArgs(uint64(2), "morning", sqlmock.AnyArg(), int64(700), int64(550), nil, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM payments WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(testTime))
	mock.ExpectCommit()

	body := `{"memberId":7,"plan":2,"joinDate":"2025-02-10","collectedAmount":400,"createdBy":1,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodPost, "/member/updateMembership", body, h.Renew)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Member memberPart `json:"member"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(550), resp.Data.Member.DueAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMemberCascadesPayments(t *testing.T) {
	mock, admins, staff, members, plans, payments := newMockDB(t)
	h := NewMemberHandler(admins, staff, members, plans, payments)

	expectAdminLookup(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id=? AND created_by=?")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_by", "created_by_staff", "name", "contact", "email", "gender", "batch", "address",
			"plan_id", "join_date", "admission_amount", "discount", "collected_amount", "due_amount",
			"created_at", "updated_at",
		}).AddRow(7, 1, nil, "Asha", "9000000001", "asha@example.com", "female", "morning", "12 Gym Lane",
			1, testTime, 200, 50, 300, 350, testTime, testTime))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payments WHERE member_id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM members WHERE id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"memberId":7,"userId":1,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodDelete, "/member/deleteMember", body, h.Delete)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deletedMemberId":7`)
	assert.Contains(t, rec.Body.String(), `"deletedMemberName":"Asha"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMemberRequiresAllTier(t *testing.T) {
	mock, admins, staff, members, plans, payments := newMockDB(t)
	h := NewMemberHandler(admins, staff, members, plans, payments)

	mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE id=?")).
		WillReturnRows(staffRow(4, 1, "view+add+update"))

	body := `{"memberId":7,"userId":4,"currentUser":"Staff"}`
	rec := doJSON(t, http.MethodDelete, "/member/deleteMember", body, h.Delete)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
