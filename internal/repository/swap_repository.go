package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// SwapRepository manages persistence for swap requests.
type SwapRepository struct {
	db *sqlx.DB
}

// NewSwapRepository constructs a SwapRepository.
func NewSwapRepository(db *sqlx.DB) *SwapRepository {
	return &SwapRepository{db: db}
}

const swapColumns = "id, assignment_id, requested_by, requested_to, status, created_at, responded_at"

// Create inserts a pending swap request.
func (r *SwapRepository) Create(ctx context.Context, swap *models.SwapRequest) error {
	if swap.ID == "" {
		swap.ID = uuid.NewString()
	}
	if swap.Status == "" {
		swap.Status = models.SwapStatusPending
	}
	if swap.CreatedAt.IsZero() {
		swap.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO swap_requests (id, assignment_id, requested_by, requested_to, status, created_at)
		VALUES (:id, :assignment_id, :requested_by, :requested_to, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, swap); err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

// FindByID fetches a swap request by ID.
func (r *SwapRepository) FindByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM swap_requests WHERE id = $1", swapColumns)
	var swap models.SwapRequest
	if err := r.db.GetContext(ctx, &swap, query, id); err != nil {
		return nil, err
	}
	return &swap, nil
}

// LockByID locks a swap row for update inside a transaction.
func (r *SwapRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SwapRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM swap_requests WHERE id = $1 FOR UPDATE", swapColumns)
	var swap models.SwapRequest
	row := exec.QueryRowxContext(ctx, query, id)
	if err := row.StructScan(&swap); err != nil {
		return nil, err
	}
	return &swap, nil
}

// ExistsPendingForAssignment reports whether the assignment already has a
// pending swap request.
func (r *SwapRepository) ExistsPendingForAssignment(ctx context.Context, assignmentID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM swap_requests WHERE assignment_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, assignmentID, models.SwapStatusPending); err != nil {
		return false, fmt.Errorf("check pending swap: %w", err)
	}
	return count > 0, nil
}

// ListPendingTargetEmails returns TAs already targeted by a pending swap for
// any exam in the same date and time window.
func (r *SwapRepository) ListPendingTargetEmails(ctx context.Context, date time.Time, startTime, endTime string) ([]string, error) {
	const query = `SELECT sr.requested_to FROM swap_requests sr
		JOIN proctoring_assignments pa ON pa.id = sr.assignment_id
		JOIN exams e ON e.id = pa.exam_id
		WHERE sr.status = $1 AND e.date = $2 AND e.start_time = $3 AND e.end_time = $4`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, models.SwapStatusPending, date, startTime, endTime); err != nil {
		return nil, fmt.Errorf("list pending swap targets: %w", err)
	}
	return emails, nil
}

// UpdateStatus moves a swap to a terminal state and stamps the response time.
func (r *SwapRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id, status string) error {
	res, err := exec.ExecContext(ctx, "UPDATE swap_requests SET status = $2, responded_at = $3 WHERE id = $1", id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update swap status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update swap status: %s not found", id)
	}
	return nil
}

// ListByTA returns swaps sent by or addressed to a TA, newest first.
func (r *SwapRepository) ListByTA(ctx context.Context, taEmail string) ([]models.SwapRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM swap_requests WHERE requested_by = $1 OR requested_to = $1 ORDER BY created_at DESC", swapColumns)
	var swaps []models.SwapRequest
	if err := r.db.SelectContext(ctx, &swaps, query, taEmail); err != nil {
		return nil, fmt.Errorf("list swaps for %s: %w", taEmail, err)
	}
	return swaps, nil
}
