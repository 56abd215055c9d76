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

type swapService interface {
	Candidates(ctx context.Context, assignmentID string) ([]models.CandidateView, error)
	Create(ctx context.Context, assignmentID, requestedBy, requestedTo string) (*models.SwapRequest, error)
	Respond(ctx context.Context, swapID, actor string, accept bool) (*models.SwapRequest, error)
	Cancel(ctx context.Context, swapID, actor string) error
	ListForTA(ctx context.Context, taEmail string) ([]models.SwapRequest, error)
	StaffReassign(ctx context.Context, assignmentID, newEmail string) error
}

// SwapHandler exposes the assignment reassignment workflow.
type SwapHandler struct {
	swaps swapService
}

// NewSwapHandler constructs SwapHandler.
func NewSwapHandler(swaps swapService) *SwapHandler {
	return &SwapHandler{swaps: swaps}
}

// Candidates godoc
// @Summary List TAs the holder may ask to take over an assignment
// @Tags Swaps
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/swap-candidates [get]
func (h *SwapHandler) Candidates(c *gin.Context) {
	views, err := h.swaps.Candidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Create godoc
// @Summary Request a swap for an assignment
// @Tags Swaps
// @Accept json
// @Produce json
// @Param payload body dto.CreateSwapRequest true "Swap payload"
// @Success 201 {object} response.Envelope
// @Router /swaps [post]
func (h *SwapHandler) Create(c *gin.Context) {
	actor := actorEmail(c)
	if actor == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing "+ActorHeader+" header"))
		return
	}
	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	swap, err := h.swaps.Create(c.Request.Context(), req.AssignmentID, actor, req.RequestedTo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, swap)
}

// Respond godoc
// @Summary Accept or reject a pending swap request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap ID"
// @Param payload body dto.RespondSwapRequest true "Response payload"
// @Success 200 {object} response.Envelope
// @Router /swaps/{id}/respond [post]
func (h *SwapHandler) Respond(c *gin.Context) {
	actor := actorEmail(c)
	if actor == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing "+ActorHeader+" header"))
		return
	}
	var req dto.RespondSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Accept == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "accept is required"))
		return
	}
	swap, err := h.swaps.Respond(c.Request.Context(), c.Param("id"), actor, *req.Accept)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swap, nil)
}

// Cancel godoc
// @Summary Withdraw a pending swap request
// @Tags Swaps
// @Param id path string true "Swap ID"
// @Success 204
// @Router /swaps/{id}/cancel [post]
func (h *SwapHandler) Cancel(c *gin.Context) {
	actor := actorEmail(c)
	if actor == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing "+ActorHeader+" header"))
		return
	}
	if err := h.swaps.Cancel(c.Request.Context(), c.Param("id"), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMine godoc
// @Summary List swaps the requesting TA sent or received
// @Tags Swaps
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /swaps [get]
func (h *SwapHandler) ListMine(c *gin.Context) {
	actor := actorEmail(c)
	if actor == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing "+ActorHeader+" header"))
		return
	}
	swaps, err := h.swaps.ListForTA(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swaps, nil)
}

// Reassign godoc
// @Summary Reassign an assignment to a new TA directly
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.StaffReassignRequest true "Reassign payload"
// @Success 204
// @Router /assignments/{id}/reassign [post]
func (h *SwapHandler) Reassign(c *gin.Context) {
	var req dto.StaffReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.swaps.StaffReassign(c.Request.Context(), c.Param("id"), req.TAEmail); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
