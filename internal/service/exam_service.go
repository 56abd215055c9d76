package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type examStore interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	List(ctx context.Context) ([]models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// ExamService manages exam requests. Deleting an exam releases the workload
// its confirmed proctors accrued, inside the same transaction that removes
// the assignment rows.
type ExamService struct {
	db          txProvider
	exams       examStore
	assignments assignmentStore
	tas         workloadLedger
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewExamService constructs an ExamService.
func NewExamService(
	db txProvider,
	exams examStore,
	assignments assignmentStore,
	tas workloadLedger,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{db: db, exams: exams, assignments: assignments, tas: tas, cache: cache, validator: validate, logger: logger}
}

// Create validates and persists an exam request.
func (s *ExamService) Create(ctx context.Context, req dto.CreateExamRequest, createdBy string) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if !req.Dean && len(req.CourseCodes) != 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ordinary exams carry exactly one course code")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	start, _ := time.Parse("15:04", req.StartTime)
	end, _ := time.Parse("15:04", req.EndTime)
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	exam := &models.Exam{
		CourseCodes:  req.CourseCodes,
		Dean:         req.Dean,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		NumProctors:  req.NumProctors,
		StudentCount: req.StudentCount,
		Classrooms:   req.Classrooms,
		CreatedBy:    createdBy,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	s.logger.Info("exam created",
		zap.String("exam_id", exam.ID),
		zap.Strings("courses", exam.CourseCodes),
		zap.Bool("dean", exam.Dean))
	return exam, nil
}

// Get fetches one exam.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.exams.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// List returns all exams ordered by date.
func (s *ExamService) List(ctx context.Context) ([]models.Exam, error) {
	exams, err := s.exams.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// Delete removes an exam, its assignments, and the workload they carried.
func (s *ExamService) Delete(ctx context.Context, id string) (err error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	duration := exam.DurationHours()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin exam delete")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.exams.LockByID(ctx, tx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock exam")
	}

	assigned, err := s.assignments.ListByExam(ctx, tx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	for _, pa := range assigned {
		if err = s.tas.AdjustWorkload(ctx, tx, pa.TAEmail, -duration); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release workload")
		}
	}
	if err = s.assignments.DeleteByExam(ctx, tx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignments")
	}
	if err = s.exams.Delete(ctx, tx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit exam delete")
	}

	_ = s.cache.Invalidate(ctx, "proctoring:*")
	_ = s.cache.Invalidate(ctx, "assignments:*")
	s.logger.Info("exam deleted",
		zap.String("exam_id", id),
		zap.Int("released_assignments", len(assigned)))
	return nil
}
