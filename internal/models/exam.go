package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Exam is the uniform request shape covering both single-course exams and
// multi-course dean exams. Invariant: Dean is false ⇒ exactly one course code.
type Exam struct {
	ID           string         `db:"id" json:"id"`
	CourseCodes  pq.StringArray `db:"course_codes" json:"course_codes"`
	Dean         bool           `db:"dean" json:"dean"`
	Date         time.Time      `db:"date" json:"date"`
	StartTime    string         `db:"start_time" json:"start_time"`
	EndTime      string         `db:"end_time" json:"end_time"`
	NumProctors  int            `db:"num_proctors" json:"num_proctors"`
	StudentCount int            `db:"student_count" json:"student_count"`
	Classrooms   pq.StringArray `db:"classrooms" json:"classrooms"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// PrimaryCourse returns the course code the solver keys its heuristics on.
// Dean exams carry several codes; the first one stands in, matching how the
// request is fed through the single-course path.
func (e Exam) PrimaryCourse() string {
	if len(e.CourseCodes) == 0 {
		return ""
	}
	return e.CourseCodes[0]
}

// Department derives the department code from the primary course code
// ("CS" from "CS315"). Dean exams have no department.
func (e Exam) Department() string {
	if e.Dean {
		return ""
	}
	return CourseDepartment(e.PrimaryCourse())
}

// TimeSlot renders the exam window in the weekly-commitment slot format.
func (e Exam) TimeSlot() string {
	return e.StartTime + "-" + e.EndTime
}

// Weekday returns the exam's weekday in the three-letter schedule format
// ("MON", "TUE", ...).
func (e Exam) Weekday() string {
	return strings.ToUpper(e.Date.Format("Mon"))
}

// DurationHours computes the exam length in whole hours, floored.
// Workload is accounted in integer hours only.
func (e Exam) DurationHours() int {
	start, err1 := time.Parse("15:04", e.StartTime)
	end, err2 := time.Parse("15:04", e.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Hours())
}

// CourseDepartment extracts the non-numeric letter prefix of a course code.
func CourseDepartment(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// CourseNumber extracts the numeric part of a course code. Zero when the
// code carries no digits.
func CourseNumber(code string) int {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// NormalizeCourseCode lowercases a course code and strips spaces, matching
// how weekly-commitment course fields are compared.
func NormalizeCourseCode(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, " ", ""))
}
