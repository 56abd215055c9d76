package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

func TestListApprovedEmailsOnFiltersByStatusAndDate(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewLeaveRepository(db)

	date := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT ta_email FROM ta_leaves`).
		WithArgs(models.LeaveStatusApproved, date).
		WillReturnRows(sqlmock.NewRows([]string{"ta_email"}).AddRow("away@uni.edu"))

	emails, err := repo.ListApprovedEmailsOn(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []string{"away@uni.edu"}, emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveCreateDefaults(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewLeaveRepository(db)

	mock.ExpectExec(`INSERT INTO ta_leaves`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	leave := &models.LeaveInterval{
		TAEmail:   "a@uni.edu",
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		LeaveType: "conference",
	}
	err := repo.Create(context.Background(), leave)
	require.NoError(t, err)
	assert.NotEmpty(t, leave.ID)
	assert.Equal(t, models.LeaveStatusPending, leave.Status)
}

func TestLeaveUpdateStatusNotFound(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewLeaveRepository(db)

	mock.ExpectExec(`UPDATE ta_leaves SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.LeaveStatusApproved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
