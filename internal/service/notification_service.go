package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
	"github.com/campus-ops/ta-proctoring-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, email string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationService fans out workflow messages through a background queue
// so swap and assignment flows never block on notification persistence.
type NotificationService struct {
	repo   notificationStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService and its queue.
// Call Start before enqueuing and Stop on shutdown.
func NewNotificationService(repo notificationStore, workers, bufferSize int, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: bufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify queues a message for the recipient. Delivery is asynchronous and
// best-effort; failures are retried by the queue and logged, never surfaced
// to the triggering request.
func (s *NotificationService) Notify(recipient, format string, args ...interface{}) {
	n := models.Notification{
		ID:             uuid.NewString(),
		RecipientEmail: recipient,
		Message:        fmt.Sprintf(format, args...),
	}
	if err := s.queue.Enqueue(jobs.Job{ID: n.ID, Type: "notification", Payload: n}); err != nil {
		s.logger.Warn("notification enqueue failed, persisting inline",
			zap.String("recipient", recipient), zap.Error(err))
		if err := s.repo.Create(context.Background(), &n); err != nil {
			s.logger.Error("notification persist failed", zap.String("recipient", recipient), zap.Error(err))
		}
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Error("notification job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.repo.Create(ctx, &n)
}

// ListForRecipient returns a user's notifications, newest first.
func (s *NotificationService) ListForRecipient(ctx context.Context, email string) ([]models.Notification, error) {
	out, err := s.repo.ListByRecipient(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return out, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
