package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// WeeklySlotRepository manages persistence for weekly commitments.
type WeeklySlotRepository struct {
	db *sqlx.DB
}

// NewWeeklySlotRepository constructs a WeeklySlotRepository.
func NewWeeklySlotRepository(db *sqlx.DB) *WeeklySlotRepository {
	return &WeeklySlotRepository{db: db}
}

// ListEmailsEnrolledIn returns TAs whose weekly commitment references the
// course, matching on the normalized (lowercased, space-stripped) code.
func (r *WeeklySlotRepository) ListEmailsEnrolledIn(ctx context.Context, normalizedCourse string) ([]string, error) {
	const query = `SELECT DISTINCT ta_email FROM weekly_slots
		WHERE LOWER(REPLACE(COALESCE(course, ''), ' ', '')) = $1`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, normalizedCourse); err != nil {
		return nil, fmt.Errorf("list enrolled tas: %w", err)
	}
	return emails, nil
}

// ListEmailsAt returns TAs committed at the exact weekday and slot string.
func (r *WeeklySlotRepository) ListEmailsAt(ctx context.Context, day, timeSlot string) ([]string, error) {
	const query = `SELECT DISTINCT ta_email FROM weekly_slots WHERE day = $1 AND time_slot = $2`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, day, timeSlot); err != nil {
		return nil, fmt.Errorf("list slot conflicts: %w", err)
	}
	return emails, nil
}

// ListByTA returns a TA's full weekly schedule.
func (r *WeeklySlotRepository) ListByTA(ctx context.Context, taEmail string) ([]models.WeeklySlot, error) {
	const query = `SELECT id, ta_email, day, time_slot, course FROM weekly_slots WHERE ta_email = $1 ORDER BY day, time_slot`
	var slots []models.WeeklySlot
	if err := r.db.SelectContext(ctx, &slots, query, taEmail); err != nil {
		return nil, fmt.Errorf("list weekly slots for %s: %w", taEmail, err)
	}
	return slots, nil
}

// Replace swaps a TA's entire weekly schedule for the provided slots.
func (r *WeeklySlotRepository) Replace(ctx context.Context, taEmail string, slots []models.WeeklySlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin weekly slot replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM weekly_slots WHERE ta_email = $1", taEmail); err != nil {
		return fmt.Errorf("clear weekly slots: %w", err)
	}
	const insert = `INSERT INTO weekly_slots (id, ta_email, day, time_slot, course) VALUES ($1, $2, $3, $4, $5)`
	for _, slot := range slots {
		id := slot.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, insert, id, taEmail, slot.Day, slot.TimeSlot, slot.Course); err != nil {
			return fmt.Errorf("insert weekly slot: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit weekly slot replace: %w", err)
	}
	return nil
}
