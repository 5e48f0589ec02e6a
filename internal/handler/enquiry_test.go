package handler

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-management/internal/repository"
)

func newEnquiryHandler(t *testing.T) (*EnquiryHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEnquiryHandler(repository.NewAdminRepo(db), repository.NewStaffRepo(db), repository.NewEnquiryRepo(db)), mock
}

func enquiryRow(id, adminID uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_by", "staff_id", "updated_by", "name", "contact", "remark",
		"follow_up_date", "category", "status", "created_at", "updated_at",
	}).AddRow(id, adminID, nil, nil, "Vikram", "9333333333", "asked about pricing",
		testTime, "discussion", status, testTime, testTime)
}

func TestUpdateEnquiryClosedIsTerminal(t *testing.T) {
	h, mock := newEnquiryHandler(t)

	expectAdminLookup(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM enquiries WHERE id=? AND created_by=?")).
		WithArgs(uint64(5), uint64(1)).WillReturnRows(enquiryRow(5, 1, "closed"))

	body := `{"enquiryId":5,"status":"open","userId":1,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodPatch, "/enquiry/updateEnquiry", body, h.Update)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "closed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEnquiryClosesOpenOne(t *testing.T) {
	h, mock := newEnquiryHandler(t)

	expectAdminLookup(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM enquiries WHERE id=? AND created_by=?")).
		WithArgs(uint64(5), uint64(1)).WillReturnRows(enquiryRow(5, 1, "open"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enquiries SET status=?, updated_by=?")).
		WithArgs("closed", uint64(1), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// handler reloads the row for the response
	mock.ExpectQuery(regexp.QuoteMeta("FROM enquiries WHERE id=? AND created_by=?")).
		WithArgs(uint64(5), uint64(1)).WillReturnRows(enquiryRow(5, 1, "closed"))

	body := `{"enquiryId":5,"status":"closed","userId":1,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodPatch, "/enquiry/updateEnquiry", body, h.Update)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"closed"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEnquiryDuplicateOpenConflicts(t *testing.T) {
	h, mock := newEnquiryHandler(t)

	expectAdminLookup(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM enquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	body := `{"name":"Vikram","contact":"9333333333","remark":"pricing","followUp":"2025-01-20","category":"discussion","createdBy":1,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodPost, "/enquiry/addEnquiry", body, h.Add)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEnquiryRequiresAllTier(t *testing.T) {
	h, mock := newEnquiryHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE id=?")).
		WillReturnRows(staffRow(4, 1, "view+add"))

	body := `{"enquiryId":5,"userId":4,"currentUser":"Staff"}`
	rec := doJSON(t, http.MethodDelete, "/enquiry/deleteEnquiry", body, h.Delete)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
