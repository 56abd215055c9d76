package dto

// CreateTARequest registers a teaching assistant.
type CreateTARequest struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName string  `json:"full_name" validate:"required"`
	Advisor  *string `json:"advisor"`
	Program  string  `json:"program" validate:"required,oneof=MS PhD"`
	Workload int     `json:"workload" validate:"min=0"`
}

// ScheduleSlot is one recurring weekly commitment.
type ScheduleSlot struct {
	Day      string  `json:"day" validate:"required,oneof=MON TUE WED THU FRI SAT SUN"`
	TimeSlot string  `json:"time_slot" validate:"required"`
	Course   *string `json:"course"`
}

// ReplaceScheduleRequest swaps a TA's weekly schedule wholesale.
type ReplaceScheduleRequest struct {
	Slots []ScheduleSlot `json:"slots" validate:"dive"`
}

// LeaveRequest files a leave interval, dates inclusive.
type LeaveRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	LeaveType string `json:"leave_type" validate:"required"`
}

// AllocationRequest records a manual TA-to-course allocation.
type AllocationRequest struct {
	CourseCode string `json:"course_code" validate:"required"`
}
