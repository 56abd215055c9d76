package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

// SettingsRepository manages the single-row global settings.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row, or defaults when none exists yet.
func (r *SettingsRepository) Get(ctx context.Context) (*models.GlobalSettings, error) {
	const query = `SELECT id, current_semester, max_ta_workload FROM global_settings WHERE id = 1`
	var settings models.GlobalSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.GlobalSettings{ID: 1}, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &settings, nil
}

// Upsert writes the settings row, creating it on first use.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.GlobalSettings) error {
	settings.ID = 1
	const query = `INSERT INTO global_settings (id, current_semester, max_ta_workload)
		VALUES (:id, :current_semester, :max_ta_workload)
		ON CONFLICT (id) DO UPDATE SET current_semester = EXCLUDED.current_semester, max_ta_workload = EXCLUDED.max_ta_workload`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
