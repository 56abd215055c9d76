package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
	"github.com/campus-ops/ta-proctoring-api/pkg/response"
)

type taService interface {
	List(ctx context.Context, filter models.TAFilter) ([]models.TA, models.Pagination, error)
	Get(ctx context.Context, email string) (*models.TA, error)
	Create(ctx context.Context, req dto.CreateTARequest) (*models.TA, error)
	Department(ctx context.Context, email string) (string, error)
	Schedule(ctx context.Context, email string) ([]models.WeeklySlot, error)
	ReplaceSchedule(ctx context.Context, email string, req dto.ReplaceScheduleRequest) error
	Leaves(ctx context.Context, email string) ([]models.LeaveInterval, error)
	RequestLeave(ctx context.Context, email string, req dto.LeaveRequest) (*models.LeaveInterval, error)
	ReviewLeave(ctx context.Context, id string, approve bool) error
	Allocate(ctx context.Context, email string, req dto.AllocationRequest) error
}

// TAHandler exposes the TA roster and its schedule, leave, and allocation
// records.
type TAHandler struct {
	tas taService
}

// NewTAHandler constructs TAHandler.
func NewTAHandler(tas taService) *TAHandler {
	return &TAHandler{tas: tas}
}

// List godoc
// @Summary List TAs
// @Tags TAs
// @Produce json
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tas [get]
func (h *TAHandler) List(c *gin.Context) {
	var filter models.TAFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active != "" {
		if active == "true" {
			v := true
			filter.Active = &v
		} else if active == "false" {
			v := false
			filter.Active = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	tas, pagination, err := h.tas.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tas, &pagination)
}

// Get godoc
// @Summary Get TA detail
// @Tags TAs
// @Produce json
// @Param email path string true "TA email"
// @Success 200 {object} response.Envelope
// @Router /tas/{email} [get]
func (h *TAHandler) Get(c *gin.Context) {
	ta, err := h.tas.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ta, nil)
}

// Create godoc
// @Summary Register a TA
// @Tags TAs
// @Accept json
// @Produce json
// @Param payload body dto.CreateTARequest true "TA payload"
// @Success 201 {object} response.Envelope
// @Router /tas [post]
func (h *TAHandler) Create(c *gin.Context) {
	var req dto.CreateTARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ta, err := h.tas.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ta)
}

// Department godoc
// @Summary Resolve a TA's department through its advisor
// @Tags TAs
// @Produce json
// @Param email path string true "TA email"
// @Success 200 {object} response.Envelope
// @Router /tas/{email}/department [get]
func (h *TAHandler) Department(c *gin.Context) {
	dept, err := h.tas.Department(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"department": dept}, nil)
}

// Schedule godoc
// @Summary Get a TA's weekly schedule
// @Tags TAs
// @Produce json
// @Param email path string true "TA email"
// @Success 200 {object} response.Envelope
// @Router /tas/{email}/schedule [get]
func (h *TAHandler) Schedule(c *gin.Context) {
	slots, err := h.tas.Schedule(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ReplaceSchedule godoc
// @Summary Replace a TA's weekly schedule
// @Tags TAs
// @Accept json
// @Param email path string true "TA email"
// @Param payload body dto.ReplaceScheduleRequest true "Schedule payload"
// @Success 204
// @Router /tas/{email}/schedule [put]
func (h *TAHandler) ReplaceSchedule(c *gin.Context) {
	var req dto.ReplaceScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.tas.ReplaceSchedule(c.Request.Context(), c.Param("email"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Leaves godoc
// @Summary List a TA's leave intervals
// @Tags TAs
// @Produce json
// @Param email path string true "TA email"
// @Success 200 {object} response.Envelope
// @Router /tas/{email}/leaves [get]
func (h *TAHandler) Leaves(c *gin.Context) {
	leaves, err := h.tas.Leaves(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaves, nil)
}

// RequestLeave godoc
// @Summary File a leave interval for a TA
// @Tags TAs
// @Accept json
// @Produce json
// @Param email path string true "TA email"
// @Param payload body dto.LeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Router /tas/{email}/leaves [post]
func (h *TAHandler) RequestLeave(c *gin.Context) {
	var req dto.LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	leave, err := h.tas.RequestLeave(c.Request.Context(), c.Param("email"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// ReviewLeave godoc
// @Summary Approve or reject a leave interval
// @Tags TAs
// @Param id path string true "Leave ID"
// @Param decision query string true "approve or reject" Enums(approve, reject)
// @Success 204
// @Router /leaves/{id}/review [post]
func (h *TAHandler) ReviewLeave(c *gin.Context) {
	decision := c.Query("decision")
	if decision != "approve" && decision != "reject" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "decision must be approve or reject"))
		return
	}
	if err := h.tas.ReviewLeave(c.Request.Context(), c.Param("id"), decision == "approve"); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Allocate godoc
// @Summary Allocate a TA to a course
// @Tags TAs
// @Accept json
// @Param email path string true "TA email"
// @Param payload body dto.AllocationRequest true "Allocation payload"
// @Success 204
// @Router /tas/{email}/allocations [post]
func (h *TAHandler) Allocate(c *gin.Context) {
	var req dto.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.tas.Allocate(c.Request.Context(), c.Param("email"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
