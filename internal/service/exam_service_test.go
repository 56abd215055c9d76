package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/repository"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

func newExamFixture(t *testing.T) (*ExamService, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")

	svc := NewExamService(
		db,
		repository.NewExamRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewTARepository(db),
		nil, nil, nil,
	)
	return svc, mock, func() { _ = db.Close() }
}

func validExamRequest() dto.CreateExamRequest {
	return dto.CreateExamRequest{
		CourseCodes:  []string{"CS315"},
		Date:         "2026-01-12",
		StartTime:    "09:00",
		EndTime:      "11:00",
		NumProctors:  2,
		StudentCount: 80,
	}
}

func TestExamCreatePersistsRequest(t *testing.T) {
	svc, mock, closeFn := newExamFixture(t)
	defer closeFn()

	mock.ExpectExec(`INSERT INTO exams`).WillReturnResult(sqlmock.NewResult(0, 1))

	exam, err := svc.Create(context.Background(), validExamRequest(), "staff@uni.edu")
	require.NoError(t, err)
	assert.NotEmpty(t, exam.ID)
	assert.Equal(t, "staff@uni.edu", exam.CreatedBy)
	assert.Equal(t, "CS315", exam.PrimaryCourse())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamCreateValidation(t *testing.T) {
	svc, _, closeFn := newExamFixture(t)
	defer closeFn()

	cases := map[string]func(*dto.CreateExamRequest){
		"missing courses":              func(r *dto.CreateExamRequest) { r.CourseCodes = nil },
		"bad date":                     func(r *dto.CreateExamRequest) { r.Date = "12-01-2026" },
		"zero proctors":                func(r *dto.CreateExamRequest) { r.NumProctors = 0 },
		"end before start":             func(r *dto.CreateExamRequest) { r.EndTime = "08:00" },
		"ordinary exam, many courses":  func(r *dto.CreateExamRequest) { r.CourseCodes = []string{"CS315", "CS201"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validExamRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req, "staff@uni.edu")
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestExamCreateDeanMayCarryManyCourses(t *testing.T) {
	svc, mock, closeFn := newExamFixture(t)
	defer closeFn()

	mock.ExpectExec(`INSERT INTO exams`).WillReturnResult(sqlmock.NewResult(0, 1))

	req := validExamRequest()
	req.Dean = true
	req.CourseCodes = []string{"CS315", "EE102", "MATH240"}

	exam, err := svc.Create(context.Background(), req, "staff@uni.edu")
	require.NoError(t, err)
	assert.Len(t, exam.CourseCodes, 3)
}

func TestExamDeleteReleasesAssignedWorkload(t *testing.T) {
	svc, mock, closeFn := newExamFixture(t)
	defer closeFn()

	mock.ExpectQuery(`SELECT .+ FROM exams WHERE id = `).
		WithArgs("exam-1").
		WillReturnRows(examColumnsRows(2))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM exams WHERE id = $1 FOR UPDATE")).
		WithArgs("exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("exam-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, exam_id, ta_email, created_at FROM proctoring_assignments WHERE exam_id = $1 ORDER BY ta_email")).
		WithArgs("exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "exam_id", "ta_email", "created_at"}).
			AddRow("pa-1", "exam-1", "a@uni.edu", time.Now().UTC()).
			AddRow("pa-2", "exam-1", "b@uni.edu", time.Now().UTC()))
	expectWorkloadAdjust(mock, "a@uni.edu", -2)
	expectWorkloadAdjust(mock, "b@uni.edu", -2)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM proctoring_assignments WHERE exam_id = $1")).
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exams WHERE id = $1")).
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Delete(context.Background(), "exam-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
