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

type settingsServiceMock struct {
	current *models.GlobalSettings
	updated *dto.UpdateSettingsRequest
}

func (m *settingsServiceMock) Get(ctx context.Context) (*models.GlobalSettings, error) {
	return m.current, nil
}

func (m *settingsServiceMock) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.GlobalSettings, error) {
	m.updated = &req
	return m.current, nil
}

func TestSettingsHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSettingsHandler(&settingsServiceMock{current: &models.GlobalSettings{ID: 1, Semester: "2026-spring", MaxTAWorkload: 40}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/settings", nil)
	c.Request = req

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.GlobalSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "2026-spring", envelope.Data.Semester)
}

func TestSettingsHandlerUpdateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSettingsHandler(&settingsServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/settings", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsHandlerUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &settingsServiceMock{current: &models.GlobalSettings{ID: 1, Semester: "2026-fall"}}
	handler := NewSettingsHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.UpdateSettingsRequest{CurrentSemester: "2026-fall", MaxTAWorkload: 40})
	req, _ := http.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.updated)
	assert.Equal(t, 40, mock.updated.MaxTAWorkload)
}
