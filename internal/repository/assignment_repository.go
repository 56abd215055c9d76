package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// AssignmentRepository manages persistence for proctoring assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID fetches an assignment by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.ProctoringAssignment, error) {
	const query = `SELECT id, exam_id, ta_email, created_at FROM proctoring_assignments WHERE id = $1`
	var pa models.ProctoringAssignment
	if err := r.db.GetContext(ctx, &pa, query, id); err != nil {
		return nil, err
	}
	return &pa, nil
}

// LockByID locks an assignment row for update inside a transaction.
func (r *AssignmentRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ProctoringAssignment, error) {
	const query = `SELECT id, exam_id, ta_email, created_at FROM proctoring_assignments WHERE id = $1 FOR UPDATE`
	var pa models.ProctoringAssignment
	row := exec.QueryRowxContext(ctx, query, id)
	if err := row.StructScan(&pa); err != nil {
		return nil, err
	}
	return &pa, nil
}

// ListByExam returns assignments for an exam. Runs on the provided executor
// so confirmation can read inside its transaction.
func (r *AssignmentRepository) ListByExam(ctx context.Context, exec sqlx.ExtContext, examID string) ([]models.ProctoringAssignment, error) {
	const query = `SELECT id, exam_id, ta_email, created_at FROM proctoring_assignments WHERE exam_id = $1 ORDER BY ta_email`
	rows, err := exec.QueryxContext(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("list assignments for exam %s: %w", examID, err)
	}
	defer rows.Close()

	var out []models.ProctoringAssignment
	for rows.Next() {
		var pa models.ProctoringAssignment
		if err := rows.StructScan(&pa); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, pa)
	}
	return out, rows.Err()
}

// ListTAEmailsOn returns emails of TAs with any confirmed assignment on the
// given date, ordinary and dean exams alike.
func (r *AssignmentRepository) ListTAEmailsOn(ctx context.Context, date time.Time) ([]string, error) {
	const query = `SELECT pa.ta_email FROM proctoring_assignments pa
		JOIN exams e ON e.id = pa.exam_id
		WHERE e.date = $1`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, date); err != nil {
		return nil, fmt.Errorf("list same-day proctors: %w", err)
	}
	return emails, nil
}

// ListTAEmailsAdjacent returns emails of TAs assigned the day before or
// after the given date.
func (r *AssignmentRepository) ListTAEmailsAdjacent(ctx context.Context, date time.Time) ([]string, error) {
	const query = `SELECT pa.ta_email FROM proctoring_assignments pa
		JOIN exams e ON e.id = pa.exam_id
		WHERE e.date IN ($1, $2)`
	var emails []string
	before := date.AddDate(0, 0, -1)
	after := date.AddDate(0, 0, 1)
	if err := r.db.SelectContext(ctx, &emails, query, before, after); err != nil {
		return nil, fmt.Errorf("list adjacent-day proctors: %w", err)
	}
	return emails, nil
}

// DeleteByExam removes every assignment for the exam.
func (r *AssignmentRepository) DeleteByExam(ctx context.Context, exec sqlx.ExtContext, examID string) error {
	if _, err := exec.ExecContext(ctx, "DELETE FROM proctoring_assignments WHERE exam_id = $1", examID); err != nil {
		return fmt.Errorf("delete assignments for exam %s: %w", examID, err)
	}
	return nil
}

// CreateBatch inserts one assignment per TA email for the exam.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, examID string, taEmails []string) error {
	const query = `INSERT INTO proctoring_assignments (id, exam_id, ta_email, created_at) VALUES ($1, $2, $3, $4)`
	now := time.Now().UTC()
	for _, email := range taEmails {
		if _, err := exec.ExecContext(ctx, query, uuid.NewString(), examID, email, now); err != nil {
			return fmt.Errorf("create assignment %s/%s: %w", examID, email, err)
		}
	}
	return nil
}

// UpdateTA reassigns an existing assignment to a new TA.
func (r *AssignmentRepository) UpdateTA(ctx context.Context, exec sqlx.ExtContext, id, newEmail string) error {
	res, err := exec.ExecContext(ctx, "UPDATE proctoring_assignments SET ta_email = $2 WHERE id = $1", id, newEmail)
	if err != nil {
		return fmt.Errorf("reassign assignment %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("reassign assignment %s: not found", id)
	}
	return nil
}

// ListRows returns the joined roster view, ordered by date or course.
func (r *AssignmentRepository) ListRows(ctx context.Context, orderBy string) ([]models.AssignmentRow, error) {
	order := "e.date, e.course_codes[1]"
	if orderBy == "course" {
		order = "e.course_codes[1], e.date"
	}
	query := fmt.Sprintf(`SELECT pa.id, pa.exam_id, pa.ta_email, t.full_name AS ta_name,
			e.course_codes, e.dean, e.date, e.start_time, e.end_time, e.student_count
		FROM proctoring_assignments pa
		JOIN exams e ON e.id = pa.exam_id
		JOIN tas t ON t.email = pa.ta_email
		ORDER BY %s`, order)
	var rows []models.AssignmentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list assignment rows: %w", err)
	}
	return rows, nil
}

// ListRowsByTA returns the roster view filtered to one TA.
func (r *AssignmentRepository) ListRowsByTA(ctx context.Context, taEmail string) ([]models.AssignmentRow, error) {
	const query = `SELECT pa.id, pa.exam_id, pa.ta_email, t.full_name AS ta_name,
			e.course_codes, e.dean, e.date, e.start_time, e.end_time, e.student_count
		FROM proctoring_assignments pa
		JOIN exams e ON e.id = pa.exam_id
		JOIN tas t ON t.email = pa.ta_email
		WHERE pa.ta_email = $1
		ORDER BY e.date, e.start_time`
	var rows []models.AssignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, taEmail); err != nil {
		return nil, fmt.Errorf("list assignments for ta %s: %w", taEmail, err)
	}
	return rows, nil
}
