package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
	"github.com/campus-ops/ta-proctoring-api/pkg/response"
)

type rosterService interface {
	ListRoster(ctx context.Context, orderBy string) ([]models.AssignmentRow, error)
	ListByTA(ctx context.Context, taEmail string) ([]models.AssignmentRow, error)
	ExportCSV(ctx context.Context, orderBy string) ([]byte, error)
}

// AssignmentHandler exposes roster listings and export.
type AssignmentHandler struct {
	assignments rosterService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments rosterService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List the proctoring roster
// @Tags Assignments
// @Produce json
// @Param order query string false "Order by date or course" Enums(date, course)
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	rows, err := h.assignments.ListRoster(c.Request.Context(), c.DefaultQuery("order", "date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ListMine godoc
// @Summary List the requesting TA's assignments
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/mine [get]
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	actor := actorEmail(c)
	if actor == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing "+ActorHeader+" header"))
		return
	}
	rows, err := h.assignments.ListByTA(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Export the proctoring roster as CSV
// @Tags Assignments
// @Produce text/csv
// @Param order query string false "Order by date or course" Enums(date, course)
// @Success 200 {string} string "CSV payload"
// @Router /assignments/export [get]
func (h *AssignmentHandler) Export(c *gin.Context) {
	payload, err := h.assignments.ExportCSV(c.Request.Context(), c.DefaultQuery("order", "date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("proctoring-roster-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
