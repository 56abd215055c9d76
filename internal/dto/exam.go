package dto

// CreateExamRequest is the payload for registering an exam.
// Ordinary exams carry exactly one course code; dean exams may carry many.
type CreateExamRequest struct {
	CourseCodes  []string `json:"course_codes" validate:"required,min=1,dive,required"`
	Dean         bool     `json:"dean"`
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string   `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string   `json:"end_time" validate:"required,datetime=15:04"`
	NumProctors  int      `json:"num_proctors" validate:"required,min=1"`
	StudentCount int      `json:"student_count" validate:"min=0"`
	Classrooms   []string `json:"classrooms"`
}
