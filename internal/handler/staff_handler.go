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

type departmentDirectory interface {
	Staff(ctx context.Context, department string) ([]models.Staff, error)
	Register(ctx context.Context, staff *models.Staff) error
}

// StaffHandler exposes the instructor directory.
type StaffHandler struct {
	departments departmentDirectory
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(departments departmentDirectory) *StaffHandler {
	return &StaffHandler{departments: departments}
}

// List godoc
// @Summary List staff of a department
// @Tags Staff
// @Produce json
// @Param department query string true "Department code"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	department := c.Query("department")
	if department == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "department query parameter is required"))
		return
	}
	staff, err := h.departments.Staff(c.Request.Context(), department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// Create godoc
// @Summary Register an instructor
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body dto.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	staff := &models.Staff{Email: req.Email, FullName: req.FullName, Department: req.Department}
	if err := h.departments.Register(c.Request.Context(), staff); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, staff)
}
