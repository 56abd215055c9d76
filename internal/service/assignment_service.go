package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
	"github.com/campus-ops/ta-proctoring-api/pkg/export"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type examLocker interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type assignmentStore interface {
	ListByExam(ctx context.Context, exec sqlx.ExtContext, examID string) ([]models.ProctoringAssignment, error)
	DeleteByExam(ctx context.Context, exec sqlx.ExtContext, examID string) error
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, examID string, taEmails []string) error
	ListRows(ctx context.Context, orderBy string) ([]models.AssignmentRow, error)
	ListRowsByTA(ctx context.Context, taEmail string) ([]models.AssignmentRow, error)
}

type workloadLedger interface {
	AdjustWorkload(ctx context.Context, exec sqlx.ExtContext, email string, deltaHours int) error
	ExistActiveByEmails(ctx context.Context, emails []string) ([]string, error)
}

// AssignmentService materializes chosen proctor lists and keeps workload
// accounting consistent through replacements.
type AssignmentService struct {
	db          txProvider
	exams       examLocker
	assignments assignmentStore
	tas         workloadLedger
	cache       *CacheService
	metrics     *MetricsService
	csv         *export.CSVExporter
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(
	db txProvider,
	exams examLocker,
	assignments assignmentStore,
	tas workloadLedger,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		db:          db,
		exams:       exams,
		assignments: assignments,
		tas:         tas,
		cache:       cache,
		metrics:     metrics,
		csv:         export.NewCSVExporter(),
		logger:      logger,
	}
}

// Confirm atomically replaces the exam's assignments with the given TA list
// and adjusts workloads. The whole effect is all-or-nothing: prior proctors
// are decremented, prior rows deleted, new rows created, and new proctors
// incremented by the exam's duration, inside one transaction holding a row
// lock on the exam. Confirming the same list twice therefore lands on the
// same workloads as confirming once.
func (s *AssignmentService) Confirm(ctx context.Context, examID string, taEmails []string) (err error) {
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	if len(taEmails) != exam.NumProctors {
		return appErrors.Clone(appErrors.ErrProctorCount,
			fmt.Sprintf("exam requires %d proctors, got %d", exam.NumProctors, len(taEmails)))
	}
	if dup := firstDuplicate(taEmails); dup != "" {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate TA in list: %s", dup))
	}

	missing, err := s.tas.ExistActiveByEmails(ctx, taEmails)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify TAs")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("unknown or inactive TAs: %s", strings.Join(missing, ", ")))
	}

	duration := exam.DurationHours()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin confirmation")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.exams.LockByID(ctx, tx, examID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock exam")
	}

	prior, err := s.assignments.ListByExam(ctx, tx, examID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prior assignments")
	}
	for _, pa := range prior {
		if err = s.tas.AdjustWorkload(ctx, tx, pa.TAEmail, -duration); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release prior workload")
		}
	}

	if err = s.assignments.DeleteByExam(ctx, tx, examID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear prior assignments")
	}
	if err = s.assignments.CreateBatch(ctx, tx, examID, taEmails); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignments")
	}
	for _, email := range taEmails {
		if err = s.tas.AdjustWorkload(ctx, tx, email, duration); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to credit workload")
		}
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit confirmation")
	}

	s.metrics.RecordConfirmed(len(taEmails))
	s.invalidateCaches(ctx)
	s.logger.Info("assignment confirmed",
		zap.String("exam_id", examID),
		zap.Int("proctors", len(taEmails)),
		zap.Int("duration_hours", duration))
	return nil
}

// ListRoster returns the joined roster, ordered by date or course.
func (s *AssignmentService) ListRoster(ctx context.Context, orderBy string) ([]models.AssignmentRow, error) {
	rows, err := s.assignments.ListRows(ctx, orderBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return rows, nil
}

// ListByTA returns one TA's assignments, soonest first.
func (s *AssignmentService) ListByTA(ctx context.Context, taEmail string) ([]models.AssignmentRow, error) {
	rows, err := s.assignments.ListRowsByTA(ctx, taEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return rows, nil
}

// ExportCSV renders the roster as a CSV document.
func (s *AssignmentService) ExportCSV(ctx context.Context, orderBy string) ([]byte, error) {
	rows, err := s.ListRoster(ctx, orderBy)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Start", "End", "Courses", "Dean", "TA", "Email", "Students"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dean := "no"
		if row.Dean {
			dean = "yes"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     row.Date.Format("2006-01-02"),
			"Start":    row.StartTime,
			"End":      row.EndTime,
			"Courses":  strings.Join(row.CourseCodes, " "),
			"Dean":     dean,
			"TA":       row.TAName,
			"Email":    row.TAEmail,
			"Students": fmt.Sprintf("%d", row.StudentCount),
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	return payload, nil
}

func (s *AssignmentService) invalidateCaches(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, "proctoring:*")
	_ = s.cache.Invalidate(ctx, "assignments:*")
}

func firstDuplicate(emails []string) string {
	seen := make(map[string]bool, len(emails))
	for _, email := range emails {
		if seen[email] {
			return email
		}
		seen[email] = true
	}
	return ""
}
