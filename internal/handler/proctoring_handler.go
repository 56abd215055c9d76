package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
	"github.com/campus-ops/ta-proctoring-api/internal/service"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
	"github.com/campus-ops/ta-proctoring-api/pkg/response"
)

type proctoringEngine interface {
	ListCandidates(ctx context.Context, examID string) ([]models.CandidateView, error)
	AssignWithOverrides(ctx context.Context, examID string) (*service.AssignmentProposal, error)
}

type assignmentConfirmer interface {
	Confirm(ctx context.Context, examID string, taEmails []string) error
}

// ProctoringHandler exposes the assignment engine: candidate listings,
// override-ladder proposals, and confirmation.
type ProctoringHandler struct {
	proctoring  proctoringEngine
	assignments assignmentConfirmer
}

// NewProctoringHandler constructs ProctoringHandler.
func NewProctoringHandler(proctoring proctoringEngine, assignments assignmentConfirmer) *ProctoringHandler {
	return &ProctoringHandler{proctoring: proctoring, assignments: assignments}
}

// Candidates godoc
// @Summary List candidate TAs for an exam with exclusion reasons
// @Tags Proctoring
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/candidates [get]
func (h *ProctoringHandler) Candidates(c *gin.Context) {
	views, err := h.proctoring.ListCandidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Propose godoc
// @Summary Run the override ladder and propose a proctor list
// @Tags Proctoring
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/proposal [post]
func (h *ProctoringHandler) Propose(c *gin.Context) {
	proposal, err := h.proctoring.AssignWithOverrides(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, proposal, nil)
}

// Confirm godoc
// @Summary Confirm a proctor list for an exam
// @Tags Proctoring
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.ConfirmAssignmentRequest true "TA list"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/assignments [post]
func (h *ProctoringHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.assignments.Confirm(c.Request.Context(), c.Param("id"), req.TAEmails); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"exam_id": c.Param("id"), "assigned": len(req.TAEmails)}, nil)
}
