package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// LeaveRepository manages persistence for TA leave intervals.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// ListApprovedEmailsOn returns emails of TAs with an approved leave interval
// covering the given date. Only approved intervals are hard-excluding.
func (r *LeaveRepository) ListApprovedEmailsOn(ctx context.Context, date time.Time) ([]string, error) {
	const query = `SELECT ta_email FROM ta_leaves
		WHERE status = $1 AND start_date <= $2 AND end_date >= $2`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, models.LeaveStatusApproved, date); err != nil {
		return nil, fmt.Errorf("list approved leaves: %w", err)
	}
	return emails, nil
}

// ListByTA returns a TA's leave intervals, newest first.
func (r *LeaveRepository) ListByTA(ctx context.Context, taEmail string) ([]models.LeaveInterval, error) {
	const query = `SELECT id, ta_email, start_date, end_date, leave_type, status, created_at
		FROM ta_leaves WHERE ta_email = $1 ORDER BY start_date DESC`
	var leaves []models.LeaveInterval
	if err := r.db.SelectContext(ctx, &leaves, query, taEmail); err != nil {
		return nil, fmt.Errorf("list leaves for %s: %w", taEmail, err)
	}
	return leaves, nil
}

// Create inserts a leave interval.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveInterval) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.Status == "" {
		leave.Status = models.LeaveStatusPending
	}
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO ta_leaves (id, ta_email, start_date, end_date, leave_type, status, created_at)
		VALUES (:id, :ta_email, :start_date, :end_date, :leave_type, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	return nil
}

// UpdateStatus moves a leave interval between approval states.
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE ta_leaves SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update leave status: %s not found", id)
	}
	return nil
}
