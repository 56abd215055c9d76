package models

import "time"

// CourseAllocation records a manual TA-to-course allocation. The solver's
// bonus-aware variant favours allocated TAs when proctoring that course.
type CourseAllocation struct {
	ID         string    `db:"id" json:"id"`
	CourseCode string    `db:"course_code" json:"course_code"`
	TAEmail    string    `db:"ta_email" json:"ta_email"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
