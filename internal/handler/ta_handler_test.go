package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

type taServiceMock struct {
	listFilter   models.TAFilter
	listResp     []models.TA
	getResp      *models.TA
	createdReq   *dto.CreateTARequest
	leaveEmail   string
	reviewID     string
	reviewOK     bool
	allocateReq  *dto.AllocationRequest
	scheduleResp []models.WeeklySlot
}

func (m *taServiceMock) List(ctx context.Context, filter models.TAFilter) ([]models.TA, models.Pagination, error) {
	m.listFilter = filter
	return m.listResp, models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *taServiceMock) Get(ctx context.Context, email string) (*models.TA, error) {
	return m.getResp, nil
}

func (m *taServiceMock) Create(ctx context.Context, req dto.CreateTARequest) (*models.TA, error) {
	m.createdReq = &req
	return &models.TA{Email: req.Email, FullName: req.FullName, Program: req.Program}, nil
}

func (m *taServiceMock) Department(ctx context.Context, email string) (string, error) {
	return "CS", nil
}

func (m *taServiceMock) Schedule(ctx context.Context, email string) ([]models.WeeklySlot, error) {
	return m.scheduleResp, nil
}

func (m *taServiceMock) ReplaceSchedule(ctx context.Context, email string, req dto.ReplaceScheduleRequest) error {
	return nil
}

func (m *taServiceMock) Leaves(ctx context.Context, email string) ([]models.LeaveInterval, error) {
	return nil, nil
}

func (m *taServiceMock) RequestLeave(ctx context.Context, email string, req dto.LeaveRequest) (*models.LeaveInterval, error) {
	m.leaveEmail = email
	return &models.LeaveInterval{TAEmail: email, Status: models.LeaveStatusPending}, nil
}

func (m *taServiceMock) ReviewLeave(ctx context.Context, id string, approve bool) error {
	m.reviewID = id
	m.reviewOK = approve
	return nil
}

func (m *taServiceMock) Allocate(ctx context.Context, email string, req dto.AllocationRequest) error {
	m.allocateReq = &req
	return nil
}

func TestTAHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &taServiceMock{}
	handler := NewTAHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tas?search=ada&active=true&page=2&limit=10&sort=workload&order=desc", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada", mock.listFilter.Search)
	require.NotNil(t, mock.listFilter.Active)
	assert.True(t, *mock.listFilter.Active)
	assert.Equal(t, 2, mock.listFilter.Page)
	assert.Equal(t, 10, mock.listFilter.PageSize)
	assert.Equal(t, "workload", mock.listFilter.SortBy)
	assert.Equal(t, "desc", mock.listFilter.SortOrder)
}

func TestTAHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTAHandler(&taServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/tas", bytes.NewReader([]byte(`nope`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTAHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &taServiceMock{}
	handler := NewTAHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CreateTARequest{Email: "a@uni.edu", FullName: "Ada Aksoy", Program: "PhD"})
	req, _ := http.NewRequest(http.MethodPost, "/tas", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.createdReq)
	assert.Equal(t, "a@uni.edu", mock.createdReq.Email)
}

func TestTAHandlerRequestLeave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &taServiceMock{}
	handler := NewTAHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.LeaveRequest{StartDate: "2026-01-10", EndDate: "2026-01-12", LeaveType: "conference"})
	req, _ := http.NewRequest(http.MethodPost, "/tas/a@uni.edu/leaves", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "email", Value: "a@uni.edu"}}

	handler.RequestLeave(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a@uni.edu", mock.leaveEmail)
}

func TestTAHandlerReviewLeaveRejectsUnknownDecision(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTAHandler(&taServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/leaves/leave-1/review?decision=maybe", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "leave-1"}}

	handler.ReviewLeave(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTAHandlerReviewLeaveApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &taServiceMock{}
	handler := NewTAHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/leaves/leave-1/review?decision=approve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "leave-1"}}

	handler.ReviewLeave(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "leave-1", mock.reviewID)
	assert.True(t, mock.reviewOK)
}

func TestTAHandlerAllocate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &taServiceMock{}
	handler := NewTAHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.AllocationRequest{CourseCode: "CS315"})
	req, _ := http.NewRequest(http.MethodPost, "/tas/a@uni.edu/allocations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "email", Value: "a@uni.edu"}}

	handler.Allocate(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, mock.allocateReq)
	assert.Equal(t, "CS315", mock.allocateReq.CourseCode)
}
