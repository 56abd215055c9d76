package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
	"github.com/campus-ops/ta-proctoring-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) (*models.GlobalSettings, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.GlobalSettings, error)
}

// SettingsHandler exposes the global admin configuration.
type SettingsHandler struct {
	settings settingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings settingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get global settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update global settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	settings, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
