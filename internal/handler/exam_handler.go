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

type examService interface {
	List(ctx context.Context) ([]models.Exam, error)
	Get(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, req dto.CreateExamRequest, createdBy string) (*models.Exam, error)
	Delete(ctx context.Context, id string) error
}

// ExamHandler exposes exam request endpoints.
type ExamHandler struct {
	exams examService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams examService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	exams, err := h.exams.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// Get godoc
// @Summary Get exam detail
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Create an exam request
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.exams.Create(c.Request.Context(), req, actorEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Delete godoc
// @Summary Delete an exam and release its proctors' workload
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.exams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
