package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	return db, mock, func() { _ = db.Close() }
}

func taMockRows(emails ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "full_name", "advisor", "program", "workload", "active", "created_at", "updated_at"})
	for i, email := range emails {
		rows.AddRow(email, email, email, nil, models.ProgramMS, i, true, time.Now().UTC(), time.Now().UTC())
	}
	return rows
}

func TestTAListAppliesFiltersAndPagination(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewTARepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, full_name, advisor, program, workload, active, created_at, updated_at FROM tas WHERE 1=1 AND active = $1 AND (LOWER(full_name) LIKE $2 OR LOWER(email) LIKE $2) ORDER BY workload ASC LIMIT 20 OFFSET 20")).
		WithArgs(true, "%ada%").
		WillReturnRows(taMockRows("ada@uni.edu"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tas WHERE 1=1 AND active = $1 AND (LOWER(full_name) LIKE $2 OR LOWER(email) LIKE $2)")).
		WithArgs(true, "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	active := true
	tas, total, err := repo.List(context.Background(), models.TAFilter{
		Active:   &active,
		Search:   "Ada",
		Page:     2,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Len(t, tas, 1)
	assert.Equal(t, 21, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTAListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewTARepository(db)

	// unknown sort columns fall back to workload instead of reaching the query
	mock.ExpectQuery(`ORDER BY workload ASC`).WillReturnRows(taMockRows())
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.TAFilter{SortBy: "workload; DROP TABLE tas"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustWorkload(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewTARepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tas SET workload = GREATEST(workload + $2, 0), updated_at = $3 WHERE email = $1")).
		WithArgs("a@uni.edu", -3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AdjustWorkload(context.Background(), db, "a@uni.edu", -3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustWorkloadUnknownTA(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewTARepository(db)

	mock.ExpectExec(`UPDATE tas SET workload`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AdjustWorkload(context.Background(), db, "ghost@uni.edu", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such ta")
}

func TestExistActiveByEmailsReportsMissing(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewTARepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT email FROM tas WHERE active = TRUE AND email IN ($1, $2)")).
		WithArgs("a@uni.edu", "ghost@uni.edu").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@uni.edu"))

	missing, err := repo.ExistActiveByEmails(context.Background(), []string{"a@uni.edu", "ghost@uni.edu"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost@uni.edu"}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistActiveByEmailsEmptyInput(t *testing.T) {
	db, _, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewTARepository(db)

	missing, err := repo.ExistActiveByEmails(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTACreateAssignsID(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewTARepository(db)

	mock.ExpectExec(`INSERT INTO tas`).WillReturnResult(sqlmock.NewResult(0, 1))

	ta := &models.TA{Email: "a@uni.edu", FullName: "Ada", Program: models.ProgramMS, Active: true}
	err := repo.Create(context.Background(), ta)
	require.NoError(t, err)
	assert.NotEmpty(t, ta.ID)
	assert.False(t, ta.UpdatedAt.IsZero())
}
