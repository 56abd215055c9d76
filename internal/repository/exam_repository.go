package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// ExamRepository manages persistence for exam requests.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = "id, course_codes, dean, date, start_time, end_time, num_proctors, student_count, classrooms, created_by, created_at"

// FindByID fetches an exam by ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	query := fmt.Sprintf("SELECT %s FROM exams WHERE id = $1", examColumns)
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// List returns exams ordered by date then start time.
func (r *ExamRepository) List(ctx context.Context) ([]models.Exam, error) {
	query := fmt.Sprintf("SELECT %s FROM exams ORDER BY date, start_time", examColumns)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// Create inserts a new exam record.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exams (id, course_codes, dean, date, start_time, end_time, num_proctors, student_count, classrooms, created_by, created_at)
		VALUES (:id, :course_codes, :dean, :date, :start_time, :end_time, :num_proctors, :student_count, :classrooms, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// LockByID takes a row-level lock on the exam, serializing concurrent
// confirmations for the same exam. Must run inside a transaction.
func (r *ExamRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error {
	var locked string
	row := exec.QueryRowxContext(ctx, "SELECT id FROM exams WHERE id = $1 FOR UPDATE", id)
	if err := row.Scan(&locked); err != nil {
		return err
	}
	return nil
}

// Delete removes an exam row. Assignment cleanup and workload compensation
// are the caller's responsibility, inside the same transaction.
func (r *ExamRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := exec.ExecContext(ctx, "DELETE FROM exams WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}
