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
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

type swapServiceMock struct {
	candidates []models.CandidateView
	createdBy  string
	createdTo  string
	respondErr error
	responded  bool
	accepted   bool
	cancelled  string
	reassigned string
	listResp   []models.SwapRequest
}

func (m *swapServiceMock) Candidates(ctx context.Context, assignmentID string) ([]models.CandidateView, error) {
	return m.candidates, nil
}

func (m *swapServiceMock) Create(ctx context.Context, assignmentID, requestedBy, requestedTo string) (*models.SwapRequest, error) {
	m.createdBy = requestedBy
	m.createdTo = requestedTo
	return &models.SwapRequest{ID: "swap-1", AssignmentID: assignmentID, RequestedBy: requestedBy, RequestedTo: requestedTo, Status: models.SwapStatusPending}, nil
}

func (m *swapServiceMock) Respond(ctx context.Context, swapID, actor string, accept bool) (*models.SwapRequest, error) {
	if m.respondErr != nil {
		return nil, m.respondErr
	}
	m.responded = true
	m.accepted = accept
	status := models.SwapStatusRejected
	if accept {
		status = models.SwapStatusAccepted
	}
	return &models.SwapRequest{ID: swapID, Status: status}, nil
}

func (m *swapServiceMock) Cancel(ctx context.Context, swapID, actor string) error {
	m.cancelled = swapID
	return nil
}

func (m *swapServiceMock) ListForTA(ctx context.Context, taEmail string) ([]models.SwapRequest, error) {
	return m.listResp, nil
}

func (m *swapServiceMock) StaffReassign(ctx context.Context, assignmentID, newEmail string) error {
	m.reassigned = newEmail
	return nil
}

func TestSwapHandlerCreateRequiresActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSwapHandler(&swapServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CreateSwapRequest{AssignmentID: "pa-1", RequestedTo: "b@uni.edu"})
	req, _ := http.NewRequest(http.MethodPost, "/swaps", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &swapServiceMock{}
	handler := NewSwapHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.CreateSwapRequest{AssignmentID: "pa-1", RequestedTo: "b@uni.edu"})
	req, _ := http.NewRequest(http.MethodPost, "/swaps", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "A@Uni.edu")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a@uni.edu", mock.createdBy)
	assert.Equal(t, "b@uni.edu", mock.createdTo)
}

func TestSwapHandlerRespondRequiresAccept(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSwapHandler(&swapServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps/swap-1/respond", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "b@uni.edu")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}

	handler.Respond(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapHandlerRespondAccept(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &swapServiceMock{}
	handler := NewSwapHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	accept := true
	body, _ := json.Marshal(dto.RespondSwapRequest{Accept: &accept})
	req, _ := http.NewRequest(http.MethodPost, "/swaps/swap-1/respond", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "b@uni.edu")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}

	handler.Respond(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.responded)
	assert.True(t, mock.accepted)
}

func TestSwapHandlerRespondForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSwapHandler(&swapServiceMock{respondErr: appErrors.Clone(appErrors.ErrForbidden, "only the requested TA may respond")})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	accept := false
	body, _ := json.Marshal(dto.RespondSwapRequest{Accept: &accept})
	req, _ := http.NewRequest(http.MethodPost, "/swaps/swap-1/respond", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "intruder@uni.edu")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}

	handler.Respond(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSwapHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &swapServiceMock{}
	handler := NewSwapHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/swaps/swap-1/cancel", nil)
	req.Header.Set(ActorHeader, "a@uni.edu")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "swap-1"}}

	handler.Cancel(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "swap-1", mock.cancelled)
}

func TestSwapHandlerReassign(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &swapServiceMock{}
	handler := NewSwapHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.StaffReassignRequest{TAEmail: "c@uni.edu"})
	req, _ := http.NewRequest(http.MethodPost, "/assignments/pa-1/reassign", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "pa-1"}}

	handler.Reassign(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "c@uni.edu", mock.reassigned)
}
