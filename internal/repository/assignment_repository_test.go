package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTAEmailsAdjacentQueriesBothNeighbours(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewAssignmentRepository(db)

	date := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE e.date IN \(\$1, \$2\)`).
		WithArgs(date.AddDate(0, 0, -1), date.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"ta_email"}).AddRow("a@uni.edu"))

	emails, err := repo.ListTAEmailsAdjacent(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@uni.edu"}, emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTAEmailsOn(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewAssignmentRepository(db)

	date := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE e.date = \$1`).
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows([]string{"ta_email"}).AddRow("a@uni.edu").AddRow("b@uni.edu"))

	emails, err := repo.ListTAEmailsOn(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@uni.edu", "b@uni.edu"}, emails)
}

func TestCreateBatchInsertsOneRowPerTA(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewAssignmentRepository(db)

	for _, email := range []string{"a@uni.edu", "b@uni.edu"} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proctoring_assignments (id, exam_id, ta_email, created_at) VALUES ($1, $2, $3, $4)")).
			WithArgs(sqlmock.AnyArg(), "exam-1", email, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	err := repo.CreateBatch(context.Background(), db, "exam-1", []string{"a@uni.edu", "b@uni.edu"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTANotFound(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(`UPDATE proctoring_assignments SET ta_email`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateTA(context.Background(), db, "missing", "a@uni.edu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRowsOrdersByCourseWhenAsked(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(`ORDER BY e.course_codes\[1\], e.date`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "exam_id", "ta_email", "ta_name", "course_codes", "dean",
			"date", "start_time", "end_time", "student_count",
		}).AddRow("pa-1", "exam-1", "a@uni.edu", "Ada", []byte("{CS315}"), false,
			time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), "09:00", "11:00", 80))

	rows, err := repo.ListRows(context.Background(), "course")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"CS315"}, []string(rows[0].CourseCodes))
	assert.NoError(t, mock.ExpectationsWereMet())
}
