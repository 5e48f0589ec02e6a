package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-management/internal/config"
)

// doStaffUpdate runs Update with the admin id injected the way JWTAuth
// would set it.
func doStaffUpdate(t *testing.T, h *StaffHandler, adminID uint64, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/staff/updateStaff", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", adminID)
	require.NoError(t, h.Update(c))
	return rec
}

const staffUpdateQ = "UPDATE staff SET name=COALESCE(NULLIF(?,''),name)"

func TestUpdateStaffPermissionOnlyKeepsOtherFields(t *testing.T) {
	mock, admins, staffRepo, _, _, _ := newMockDB(t)
	h := NewStaffHandler(config.Config{}, admins, staffRepo, nil)

	// omitted name/contact/role arrive as empty strings and must not be written
	mock.ExpectExec(regexp.QuoteMeta(staffUpdateQ)).
		WithArgs("", "", "", "all", uint64(4), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE id=? LIMIT 1")).
		WithArgs(uint64(4)).WillReturnRows(staffRow(4, 1, "all"))

	rec := doStaffUpdate(t, h, 1, `{"staffId":4,"permission":"all"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permission":"all"`)
	assert.Contains(t, rec.Body.String(), `"name":"Riya"`)
	assert.Contains(t, rec.Body.String(), `"role":"receptionist"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffWithoutPermissionKeepsTier(t *testing.T) {
	mock, admins, staffRepo, _, _, _ := newMockDB(t)
	h := NewStaffHandler(config.Config{}, admins, staffRepo, nil)

	// a rename must not clear the permission column and lock the account out
	mock.ExpectExec(regexp.QuoteMeta(staffUpdateQ)).
		WithArgs("Priya", "", "", "", uint64(4), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE id=? LIMIT 1")).
		WithArgs(uint64(4)).WillReturnRows(staffRow(4, 1, "view+add"))

	rec := doStaffUpdate(t, h, 1, `{"staffId":4,"name":"Priya"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"permission":"view+add"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffOtherOwnerNotFound(t *testing.T) {
	mock, admins, staffRepo, _, _, _ := newMockDB(t)
	h := NewStaffHandler(config.Config{}, admins, staffRepo, nil)

	mock.ExpectExec(regexp.QuoteMeta(staffUpdateQ)).
		WithArgs("", "", "", "all", uint64(4), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM staff WHERE id=? AND created_by=?")).
		WithArgs(uint64(4), uint64(9)).WillReturnError(sql.ErrNoRows)

	rec := doStaffUpdate(t, h, 9, `{"staffId":4,"permission":"all"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
