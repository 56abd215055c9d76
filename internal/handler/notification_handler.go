package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
	"github.com/campus-ops/ta-proctoring-api/pkg/response"
)

type notificationService interface {
	ListForRecipient(ctx context.Context, email string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationHandler exposes a user's notification feed.
type NotificationHandler struct {
	notifications notificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications notificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @Summary List the requesting user's notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	actor := actorEmail(c)
	if actor == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing "+ActorHeader+" header"))
		return
	}
	out, err := h.notifications.ListForRecipient(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
