package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

const seniorCourseNumber = 500

type leaveCalendar interface {
	ListApprovedEmailsOn(ctx context.Context, date time.Time) ([]string, error)
}

type proctorCalendar interface {
	ListTAEmailsOn(ctx context.Context, date time.Time) ([]string, error)
	ListTAEmailsAdjacent(ctx context.Context, date time.Time) ([]string, error)
}

type weeklySchedule interface {
	ListEmailsEnrolledIn(ctx context.Context, normalizedCourse string) ([]string, error)
	ListEmailsAt(ctx context.Context, day, timeSlot string) ([]string, error)
}

type allocationSource interface {
	ListEmailsForCourses(ctx context.Context, courseCodes []string) ([]string, error)
}

type swapCalendar interface {
	ListPendingTargetEmails(ctx context.Context, date time.Time, startTime, endTime string) ([]string, error)
}

type settingsSource interface {
	Get(ctx context.Context) (*models.GlobalSettings, error)
}

// EligibilitySnapshot is the point-in-time fact base for one exam's
// eligibility decisions. All rule evaluation after the snapshot is pure,
// so a solve and the candidate listing it came from agree with each other.
type EligibilitySnapshot struct {
	Exam models.Exam
	Cap  *int

	OnLeave      map[string]bool
	SameDay      map[string]bool
	Adjacent     map[string]bool
	Enrolled     map[string]bool
	LectureClash map[string]bool
	PendingSwap  map[string]bool
	Allocated    map[string]bool

	directory map[string]string
}

// Department resolves a TA's department against the snapshot's staff
// directory.
func (s *EligibilitySnapshot) Department(ta models.TA) string {
	return LookupDepartment(s.directory, ta.AdvisorName())
}

// ProgramRestricted reports whether the exam's course number puts it above
// the senior-tier threshold, which excludes junior-tier TAs by default.
func (s *EligibilitySnapshot) ProgramRestricted() bool {
	return models.CourseNumber(s.Exam.PrimaryCourse()) >= seniorCourseNumber
}

// Reasons evaluates every exclusion rule against one TA and returns the
// reasons that apply, hard rules first. An empty slice means fully eligible.
func (s *EligibilitySnapshot) Reasons(ta models.TA) []models.ExclusionReason {
	var reasons []models.ExclusionReason
	if s.OnLeave[ta.Email] {
		reasons = append(reasons, models.ReasonOnLeave)
	}
	if s.SameDay[ta.Email] {
		reasons = append(reasons, models.ReasonSameDay)
	}
	if s.Enrolled[ta.Email] {
		reasons = append(reasons, models.ReasonEnrolled)
	}
	if s.LectureClash[ta.Email] {
		reasons = append(reasons, models.ReasonLectureClash)
	}
	if s.PendingSwap[ta.Email] {
		reasons = append(reasons, models.ReasonPendingSwap)
	}
	if s.Adjacent[ta.Email] {
		reasons = append(reasons, models.ReasonAdjacentDay)
	}
	if s.ProgramRestricted() && ta.Program != models.ProgramPhD {
		reasons = append(reasons, models.ReasonProgramLevel)
	}
	if !s.Exam.Dean && s.Department(ta) != s.Exam.Department() {
		reasons = append(reasons, models.ReasonDifferentDept)
	}
	if s.Cap != nil && ta.Workload > *s.Cap {
		reasons = append(reasons, models.ReasonOverWorkload)
	}
	return reasons
}

// HardExcluded reports whether a TA is out under rules no override can lift:
// leave, same-day duty, enrollment in the course, or a lecture clash.
func (s *EligibilitySnapshot) HardExcluded(ta models.TA) bool {
	return s.OnLeave[ta.Email] || s.SameDay[ta.Email] || s.Enrolled[ta.Email] || s.LectureClash[ta.Email]
}

// Cost is the solver objective contribution of choosing this TA: current
// workload scaled by ten, a flat penalty for proctoring an adjacent day,
// and a flat bonus when the TA is manually allocated to the course.
func (s *EligibilitySnapshot) Cost(ta models.TA) int64 {
	cost := int64(ta.Workload) * 10
	if s.Adjacent[ta.Email] {
		cost += 500
	}
	if s.Allocated[ta.Email] {
		cost -= 50
	}
	return cost
}

// EligibilityService assembles eligibility snapshots from the leave,
// assignment, schedule, allocation, and swap records.
type EligibilityService struct {
	leaves      leaveCalendar
	assignments proctorCalendar
	slots       weeklySchedule
	allocations allocationSource
	swaps       swapCalendar
	settings    settingsSource
	departments *DepartmentService
	logger      *zap.Logger
}

// NewEligibilityService constructs an EligibilityService.
func NewEligibilityService(
	leaves leaveCalendar,
	assignments proctorCalendar,
	slots weeklySchedule,
	allocations allocationSource,
	swaps swapCalendar,
	settings settingsSource,
	departments *DepartmentService,
	logger *zap.Logger,
) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{
		leaves:      leaves,
		assignments: assignments,
		slots:       slots,
		allocations: allocations,
		swaps:       swaps,
		settings:    settings,
		departments: departments,
		logger:      logger,
	}
}

// Snapshot loads every exclusion set relevant to the exam in one pass.
func (s *EligibilityService) Snapshot(ctx context.Context, exam models.Exam) (*EligibilitySnapshot, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workload settings")
	}

	directory, err := s.departments.DirectoryMap(ctx)
	if err != nil {
		return nil, err
	}

	onLeave, err := s.leaves.ListApprovedEmailsOn(ctx, exam.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave calendar")
	}

	sameDay, err := s.assignments.ListTAEmailsOn(ctx, exam.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load same-day assignments")
	}

	adjacent, err := s.assignments.ListTAEmailsAdjacent(ctx, exam.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load adjacent-day assignments")
	}

	enrolled := make([]string, 0)
	for _, code := range exam.CourseCodes {
		emails, err := s.slots.ListEmailsEnrolledIn(ctx, models.NormalizeCourseCode(code))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment records")
		}
		enrolled = append(enrolled, emails...)
	}

	clashing, err := s.slots.ListEmailsAt(ctx, exam.Weekday(), exam.TimeSlot())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule conflicts")
	}

	pendingSwap, err := s.swaps.ListPendingTargetEmails(ctx, exam.Date, exam.StartTime, exam.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending swap targets")
	}

	allocated, err := s.allocations.ListEmailsForCourses(ctx, exam.CourseCodes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course allocations")
	}

	return &EligibilitySnapshot{
		Exam:         exam,
		Cap:          settings.WorkloadCap(),
		OnLeave:      toSet(onLeave),
		SameDay:      toSet(sameDay),
		Adjacent:     toSet(adjacent),
		Enrolled:     toSet(enrolled),
		LectureClash: toSet(clashing),
		PendingSwap:  toSet(pendingSwap),
		Allocated:    toSet(allocated),
		directory:    directory,
	}, nil
}

func toSet(emails []string) map[string]bool {
	set := make(map[string]bool, len(emails))
	for _, email := range emails {
		set[email] = true
	}
	return set
}
