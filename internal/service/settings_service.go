package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ops/ta-proctoring-api/internal/dto"
	"github.com/campus-ops/ta-proctoring-api/internal/models"
	appErrors "github.com/campus-ops/ta-proctoring-api/pkg/errors"
)

const settingsCacheKey = "settings:global"

type settingsStore interface {
	Get(ctx context.Context) (*models.GlobalSettings, error)
	Upsert(ctx context.Context, settings *models.GlobalSettings) error
}

// SettingsService manages the single-row admin configuration with a
// read-through cache. The workload cap feeds dean-exam pool building, so
// updates invalidate candidate caches too.
type SettingsService struct {
	repo      settingsStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the current settings, serving from cache when possible.
func (s *SettingsService) Get(ctx context.Context) (*models.GlobalSettings, error) {
	var cached models.GlobalSettings
	if hit, _ := s.cache.Get(ctx, settingsCacheKey, &cached); hit {
		return &cached, nil
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	_ = s.cache.Set(ctx, settingsCacheKey, settings, 0)
	return settings, nil
}

// Update validates and persists new settings.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.GlobalSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	settings := &models.GlobalSettings{
		Semester:      req.CurrentSemester,
		MaxTAWorkload: req.MaxTAWorkload,
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}

	_ = s.cache.Invalidate(ctx, "settings:*")
	_ = s.cache.Invalidate(ctx, "proctoring:*")
	s.logger.Info("settings updated",
		zap.String("semester", settings.Semester),
		zap.Int("max_ta_workload", settings.MaxTAWorkload))
	return settings, nil
}
