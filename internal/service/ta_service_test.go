package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type mockTAStore struct {
	tas   map[string]*models.TA
	total int
}

func (m *mockTAStore) List(_ context.Context, _ models.TAFilter) ([]models.TA, int, error) {
	out := make([]models.TA, 0, len(m.tas))
	for _, ta := range m.tas {
		out = append(out, *ta)
	}
	return out, m.total, nil
}

func (m *mockTAStore) FindByEmail(_ context.Context, email string) (*models.TA, error) {
	ta, ok := m.tas[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ta, nil
}

func (m *mockTAStore) Create(_ context.Context, ta *models.TA) error {
	if m.tas == nil {
		m.tas = map[string]*models.TA{}
	}
	m.tas[ta.Email] = ta
	return nil
}

type mockScheduleStore struct {
	slots map[string][]models.WeeklySlot
}

func (m *mockScheduleStore) ListByTA(_ context.Context, taEmail string) ([]models.WeeklySlot, error) {
	return m.slots[taEmail], nil
}

func (m *mockScheduleStore) Replace(_ context.Context, taEmail string, slots []models.WeeklySlot) error {
	if m.slots == nil {
		m.slots = map[string][]models.WeeklySlot{}
	}
	m.slots[taEmail] = slots
	return nil
}

type mockLeaveStore struct {
	leaves   map[string][]models.LeaveInterval
	statuses map[string]string
}

func (m *mockLeaveStore) ListByTA(_ context.Context, taEmail string) ([]models.LeaveInterval, error) {
	return m.leaves[taEmail], nil
}

func (m *mockLeaveStore) Create(_ context.Context, leave *models.LeaveInterval) error {
	if m.leaves == nil {
		m.leaves = map[string][]models.LeaveInterval{}
	}
	m.leaves[leave.TAEmail] = append(m.leaves[leave.TAEmail], *leave)
	return nil
}

func (m *mockLeaveStore) UpdateStatus(_ context.Context, id, status string) error {
	if m.statuses == nil {
		m.statuses = map[string]string{}
	}
	m.statuses[id] = status
	return nil
}

type mockAllocationStore struct {
	allocs []models.CourseAllocation
}

func (m *mockAllocationStore) Create(_ context.Context, alloc *models.CourseAllocation) error {
	m.allocs = append(m.allocs, *alloc)
	return nil
}

type taFixture struct {
	svc         *TAService
	tas         *mockTAStore
	slots       *mockScheduleStore
	leaves      *mockLeaveStore
	allocations *mockAllocationStore
}

func newTAFixture() *taFixture {
	f := &taFixture{
		tas:         &mockTAStore{tas: map[string]*models.TA{}},
		slots:       &mockScheduleStore{},
		leaves:      &mockLeaveStore{},
		allocations: &mockAllocationStore{},
	}
	departments := NewDepartmentService(&mockStaffDir{members: []models.Staff{
		{FullName: "Alice Smith", Department: "CS"},
	}}, nil)
	f.svc = NewTAService(f.tas, f.slots, f.leaves, f.allocations, departments, nil, nil, nil)
	return f
}

func TestTACreateNormalizesEmail(t *testing.T) {
	f := newTAFixture()

	ta, err := f.svc.Create(context.Background(), dto.CreateTARequest{
		Email:    " New.TA@Uni.edu ",
		FullName: "New TA",
		Program:  models.ProgramMS,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.ta@uni.edu", ta.Email)
	assert.True(t, ta.Active)
}

func TestTACreateRejectsDuplicateEmail(t *testing.T) {
	f := newTAFixture()
	f.tas.tas["dup@uni.edu"] = &models.TA{Email: "dup@uni.edu"}

	_, err := f.svc.Create(context.Background(), dto.CreateTARequest{
		Email:    "dup@uni.edu",
		FullName: "Dup",
		Program:  models.ProgramPhD,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTACreateValidatesProgram(t *testing.T) {
	f := newTAFixture()

	_, err := f.svc.Create(context.Background(), dto.CreateTARequest{
		Email:    "x@uni.edu",
		FullName: "X",
		Program:  "BSc",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTAListNormalizesPagination(t *testing.T) {
	f := newTAFixture()
	f.tas.total = 42

	_, page, err := f.svc.List(context.Background(), models.TAFilter{Page: -3, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 42, page.TotalCount)
}

func TestTADepartmentResolvesThroughAdvisor(t *testing.T) {
	f := newTAFixture()
	f.tas.tas["a@uni.edu"] = &models.TA{Email: "a@uni.edu", Advisor: strPtr("Alice Smith")}

	dept, err := f.svc.Department(context.Background(), "a@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, "CS", dept)
}

func TestTAReplaceScheduleUppercasesDay(t *testing.T) {
	f := newTAFixture()
	f.tas.tas["a@uni.edu"] = &models.TA{Email: "a@uni.edu"}

	err := f.svc.ReplaceSchedule(context.Background(), "a@uni.edu", dto.ReplaceScheduleRequest{
		Slots: []dto.ScheduleSlot{{Day: "MON", TimeSlot: "09:00-11:00", Course: strPtr("CS315")}},
	})
	require.NoError(t, err)

	slots := f.slots.slots["a@uni.edu"]
	require.Len(t, slots, 1)
	assert.Equal(t, "MON", slots[0].Day)
	assert.Equal(t, "a@uni.edu", slots[0].TAEmail)
}

func TestTARequestLeaveValidatesDates(t *testing.T) {
	f := newTAFixture()
	f.tas.tas["a@uni.edu"] = &models.TA{Email: "a@uni.edu"}

	_, err := f.svc.RequestLeave(context.Background(), "a@uni.edu", dto.LeaveRequest{
		StartDate: "2026-01-20",
		EndDate:   "2026-01-10",
		LeaveType: "conference",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	leave, err := f.svc.RequestLeave(context.Background(), "a@uni.edu", dto.LeaveRequest{
		StartDate: "2026-01-10",
		EndDate:   "2026-01-10",
		LeaveType: "conference",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, leave.Status)
}

func TestTARequestLeaveUnknownTA(t *testing.T) {
	f := newTAFixture()

	_, err := f.svc.RequestLeave(context.Background(), "ghost@uni.edu", dto.LeaveRequest{
		StartDate: "2026-01-10",
		EndDate:   "2026-01-12",
		LeaveType: "medical",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTAReviewLeave(t *testing.T) {
	f := newTAFixture()

	require.NoError(t, f.svc.ReviewLeave(context.Background(), "leave-1", true))
	assert.Equal(t, models.LeaveStatusApproved, f.leaves.statuses["leave-1"])

	require.NoError(t, f.svc.ReviewLeave(context.Background(), "leave-2", false))
	assert.Equal(t, models.LeaveStatusRejected, f.leaves.statuses["leave-2"])
}

func TestTAAllocate(t *testing.T) {
	f := newTAFixture()
	f.tas.tas["a@uni.edu"] = &models.TA{Email: "a@uni.edu"}

	err := f.svc.Allocate(context.Background(), "a@uni.edu", dto.AllocationRequest{CourseCode: "CS315"})
	require.NoError(t, err)
	require.Len(t, f.allocations.allocs, 1)
	assert.Equal(t, "CS315", f.allocations.allocs[0].CourseCode)
	assert.Equal(t, "a@uni.edu", f.allocations.allocs[0].TAEmail)
}
