package models

import (
	"time"

	"github.com/lib/pq"
)

// ProctoringAssignment pairs an exam with a TA. At most one active row per
// (exam, TA); an exam may carry up to its required proctor count.
type ProctoringAssignment struct {
	ID        string    `db:"id" json:"id"`
	ExamID    string    `db:"exam_id" json:"exam_id"`
	TAEmail   string    `db:"ta_email" json:"ta_email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignmentRow is the joined roster view returned by listing endpoints.
type AssignmentRow struct {
	ID           string         `db:"id" json:"assignment_id"`
	ExamID       string         `db:"exam_id" json:"exam_id"`
	TAEmail      string         `db:"ta_email" json:"ta_email"`
	TAName       string         `db:"ta_name" json:"ta_name"`
	CourseCodes  pq.StringArray `db:"course_codes" json:"course_codes"`
	Dean         bool           `db:"dean" json:"dean"`
	Date         time.Time      `db:"date" json:"date"`
	StartTime    string         `db:"start_time" json:"start_time"`
	EndTime      string         `db:"end_time" json:"end_time"`
	StudentCount int            `db:"student_count" json:"student_count"`
}
