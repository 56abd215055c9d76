package models

// ExclusionReason names a rule that removes a TA from an exam's pool.
// The strings are user-facing; the UI renders them verbatim.
type ExclusionReason string

const (
	ReasonOnLeave       ExclusionReason = "On leave"
	ReasonSameDay       ExclusionReason = "Same-day proctor"
	ReasonAdjacentDay   ExclusionReason = "Day-before/after proctor"
	ReasonEnrolled      ExclusionReason = "Enrolled in course"
	ReasonLectureClash  ExclusionReason = "Lecture conflict"
	ReasonProgramLevel  ExclusionReason = "MS/PhD restriction"
	ReasonDifferentDept ExclusionReason = "Different department"
	ReasonOverWorkload  ExclusionReason = "Over max workload"
	ReasonPendingSwap   ExclusionReason = "Already has a pending swap request for this exam"
)

// Droppable reports whether the override ladder may relax this reason.
// Leave, same-day, enrollment, and lecture conflicts are always hard.
func (r ExclusionReason) Droppable() bool {
	switch r {
	case ReasonAdjacentDay, ReasonProgramLevel, ReasonDifferentDept:
		return true
	default:
		return false
	}
}

// CandidateView is a TA annotated for candidate-listing endpoints.
type CandidateView struct {
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Workload int               `json:"workload"`
	Program  string            `json:"program"`
	Reasons  []ExclusionReason `json:"reasons,omitempty"`
}
