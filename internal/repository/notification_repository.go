package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// NotificationRepository manages persistence for notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification row.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, recipient_email, message, read, created_at)
		VALUES (:id, :recipient_email, :message, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns a user's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, email string) ([]models.Notification, error) {
	const query = `SELECT id, recipient_email, message, read, created_at FROM notifications
		WHERE recipient_email = $1 ORDER BY created_at DESC`
	var out []models.Notification
	if err := r.db.SelectContext(ctx, &out, query, email); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE notifications SET read = TRUE WHERE id = $1", id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
