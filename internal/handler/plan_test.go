package handler

import (
	"database/sql"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-management/internal/repository"
)

func newPlanHandler(t *testing.T) (*PlanHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPlanHandler(repository.NewAdminRepo(db), repository.NewStaffRepo(db), repository.NewPlanRepo(db)), mock
}

const addPlanBody = `{"name":"Basic","durationType":"months","duration":1,"amount":500,"createdBy":1,"currentUser":"Admin"}`

func TestAddPlanDuplicateTupleConflicts(t *testing.T) {
	h, mock := newPlanHandler(t)

	expectAdminLookup(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM plans WHERE created_by=? AND name=?")).
		WithArgs(uint64(1), "Basic", "months", uint32(1), int64(500)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	rec := doJSON(t, http.MethodPost, "/plan/addplan", addPlanBody, h.Add)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The duplicate check is scoped per owner: the same tuple under a
// different admin goes through.
func TestAddPlanSameTupleOtherAdminSucceeds(t *testing.T) {
	h, mock := newPlanHandler(t)

	expectAdminLookup(mock, 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM plans WHERE created_by=? AND name=?")).
		WithArgs(uint64(2), "Basic", "months", uint32(1), int64(500)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plans")).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id=?")).
		WithArgs(uint64(10)).WillReturnRows(planRow(10, 2, "Basic", 500))

	body := `{"name":"Basic","durationType":"months","duration":1,"amount":500,"createdBy":2,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodPost, "/plan/addplan", body, h.Add)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":10`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPlanRejectsBadDurationType(t *testing.T) {
	h, _ := newPlanHandler(t)

	body := `{"name":"Basic","durationType":"decades","duration":1,"amount":500,"createdBy":1,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodPost, "/plan/addplan", body, h.Add)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePlanStillReferencedConflicts(t *testing.T) {
	h, mock := newPlanHandler(t)

	expectAdminLookup(mock, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM plans WHERE id=? AND created_by=?")).
		WithArgs(uint64(9), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM members WHERE plan_id=?")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	body := `{"planId":9,"userId":1,"currentUser":"Admin"}`
	rec := doJSON(t, http.MethodDelete, "/plan/deletePlan", body, h.Delete)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "assigned to members")
	assert.NoError(t, mock.ExpectationsWereMet())
}
