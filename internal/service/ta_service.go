package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type taStore interface {
	List(ctx context.Context, filter models.TAFilter) ([]models.TA, int, error)
	FindByEmail(ctx context.Context, email string) (*models.TA, error)
	Create(ctx context.Context, ta *models.TA) error
}

type scheduleStore interface {
	ListByTA(ctx context.Context, taEmail string) ([]models.WeeklySlot, error)
	Replace(ctx context.Context, taEmail string, slots []models.WeeklySlot) error
}

type leaveStore interface {
	ListByTA(ctx context.Context, taEmail string) ([]models.LeaveInterval, error)
	Create(ctx context.Context, leave *models.LeaveInterval) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type allocationStore interface {
	Create(ctx context.Context, alloc *models.CourseAllocation) error
}

// TAService manages the TA roster and the records hanging off it: weekly
// schedules, leave intervals, and manual course allocations.
type TAService struct {
	tas         taStore
	slots       scheduleStore
	leaves      leaveStore
	allocations allocationStore
	departments *DepartmentService
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTAService constructs a TAService.
func NewTAService(
	tas taStore,
	slots scheduleStore,
	leaves leaveStore,
	allocations allocationStore,
	departments *DepartmentService,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TAService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TAService{
		tas:         tas,
		slots:       slots,
		leaves:      leaves,
		allocations: allocations,
		departments: departments,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// List returns TAs matching the filter plus pagination metadata.
func (s *TAService) List(ctx context.Context, filter models.TAFilter) ([]models.TA, models.Pagination, error) {
	tas, total, err := s.tas.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list TAs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return tas, models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one TA by email.
func (s *TAService) Get(ctx context.Context, email string) (*models.TA, error) {
	ta, err := s.tas.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "TA not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load TA")
	}
	return ta, nil
}

// Create validates and registers a new TA.
func (s *TAService) Create(ctx context.Context, req dto.CreateTARequest) (*models.TA, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid TA payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.tas.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a TA with this email already exists")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing TA")
	}

	ta := &models.TA{
		Email:    email,
		FullName: req.FullName,
		Advisor:  req.Advisor,
		Program:  req.Program,
		Workload: req.Workload,
		Active:   true,
	}
	if err := s.tas.Create(ctx, ta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create TA")
	}
	s.logger.Info("ta created", zap.String("email", ta.Email), zap.String("program", ta.Program))
	return ta, nil
}

// Department resolves the TA's department through its advisor.
func (s *TAService) Department(ctx context.Context, email string) (string, error) {
	ta, err := s.Get(ctx, email)
	if err != nil {
		return "", err
	}
	return s.departments.Resolve(ctx, ta.AdvisorName())
}

// Schedule returns a TA's weekly commitments.
func (s *TAService) Schedule(ctx context.Context, email string) ([]models.WeeklySlot, error) {
	if _, err := s.Get(ctx, email); err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByTA(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return slots, nil
}

// ReplaceSchedule swaps a TA's weekly commitments wholesale. Schedule edits
// change lecture-conflict and enrollment exclusions, so candidate caches are
// dropped.
func (s *TAService) ReplaceSchedule(ctx context.Context, email string, req dto.ReplaceScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if _, err := s.Get(ctx, email); err != nil {
		return err
	}

	slots := make([]models.WeeklySlot, 0, len(req.Slots))
	for _, slot := range req.Slots {
		slots = append(slots, models.WeeklySlot{
			TAEmail:  email,
			Day:      strings.ToUpper(slot.Day),
			TimeSlot: slot.TimeSlot,
			Course:   slot.Course,
		})
	}
	if err := s.slots.Replace(ctx, email, slots); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace schedule")
	}
	_ = s.cache.Invalidate(ctx, "proctoring:*")
	return nil
}

// Leaves returns a TA's leave history.
func (s *TAService) Leaves(ctx context.Context, email string) ([]models.LeaveInterval, error) {
	if _, err := s.Get(ctx, email); err != nil {
		return nil, err
	}
	leaves, err := s.leaves.ListByTA(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaves")
	}
	return leaves, nil
}

// RequestLeave files a pending leave interval for the TA.
func (s *TAService) RequestLeave(ctx context.Context, email string, req dto.LeaveRequest) (*models.LeaveInterval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	if _, err := s.Get(ctx, email); err != nil {
		return nil, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	leave := &models.LeaveInterval{
		TAEmail:   email,
		StartDate: start,
		EndDate:   end,
		LeaveType: req.LeaveType,
		Status:    models.LeaveStatusPending,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave")
	}
	return leave, nil
}

// ReviewLeave approves or rejects a pending leave interval. Approvals change
// eligibility, so candidate caches are dropped.
func (s *TAService) ReviewLeave(ctx context.Context, id string, approve bool) error {
	status := models.LeaveStatusRejected
	if approve {
		status = models.LeaveStatusApproved
	}
	if err := s.leaves.UpdateStatus(ctx, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review leave")
	}
	if approve {
		_ = s.cache.Invalidate(ctx, "proctoring:*")
	}
	return nil
}

// Allocate records a manual TA-to-course allocation, which feeds the
// solver's affinity bonus.
func (s *TAService) Allocate(ctx context.Context, email string, req dto.AllocationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}
	if _, err := s.Get(ctx, email); err != nil {
		return err
	}
	alloc := &models.CourseAllocation{CourseCode: req.CourseCode, TAEmail: email}
	if err := s.allocations.Create(ctx, alloc); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create allocation")
	}
	_ = s.cache.Invalidate(ctx, "proctoring:*")
	return nil
}
