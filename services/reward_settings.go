package services

import (
	"context"

	"agentgift-service/apperrors"
	"agentgift-service/logger"
	"agentgift-service/models"
)

// RewardSettingsCache is an optional read-through cache in front of the settings table.
type RewardSettingsCache interface {
	GetSetting(ctx context.Context, featureID string) (*models.RewardSetting, bool, error)
	SetSetting(ctx context.Context, setting *models.RewardSetting) error
	GetAll(ctx context.Context) ([]models.RewardSetting, bool, error)
	SetAll(ctx context.Context, settings []models.RewardSetting) error
	Invalidate(ctx context.Context, featureID string) error
}

// RewardSettingUpdate is a partial update; nil fields are left alone.
type RewardSettingUpdate struct {
	BaseXPReward    *int64   `json:"base_xp_reward" validate:"omitempty,gte=0"`
	BaseCreditCost  *int64   `json:"base_credit_cost" validate:"omitempty,gte=0"`
	Multiplier      *float64 `json:"multiplier" validate:"omitempty,gt=0,lte=10"`
	CooldownMinutes *int     `json:"cooldown_minutes" validate:"omitempty,gte=0"`
	IsActive        *bool    `json:"is_active"`
}

func (u RewardSettingUpdate) empty() bool {
	return u.BaseXPReward == nil && u.BaseCreditCost == nil && u.Multiplier == nil &&
		u.CooldownMinutes == nil && u.IsActive == nil
}

type RewardSettingsService struct {
	Store RewardSettingsStore
	Cache RewardSettingsCache
}

func NewRewardSettingsService(store RewardSettingsStore, cache RewardSettingsCache) *RewardSettingsService {
	return &RewardSettingsService{Store: store, Cache: cache}
}

func (s *RewardSettingsService) List(ctx context.Context) ([]models.RewardSetting, error) {
	if s.Cache != nil {
		if settings, ok, err := s.Cache.GetAll(ctx); err != nil {
			logger.Warn("Reward settings cache read failed", "error", err)
		} else if ok {
			return settings, nil
		}
	}

	settings, err := s.Store.ListRewardSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = []models.RewardSetting{}
	}
	if s.Cache != nil {
		if err := s.Cache.SetAll(ctx, settings); err != nil {
			logger.Warn("Reward settings cache write failed", "error", err)
		}
	}
	return settings, nil
}

func (s *RewardSettingsService) Get(ctx context.Context, featureID string) (*models.RewardSetting, error) {
	if s.Cache != nil {
		if setting, ok, err := s.Cache.GetSetting(ctx, featureID); err != nil {
			logger.Warn("Reward setting cache read failed", "feature_id", featureID, "error", err)
		} else if ok {
			return setting, nil
		}
	}

	setting, err := s.Store.GetRewardSetting(ctx, featureID)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.SetSetting(ctx, setting); err != nil {
			logger.Warn("Reward setting cache write failed", "feature_id", featureID, "error", err)
		}
	}
	return setting, nil
}

// columns maps the set fields to their column names so concurrent edits to other fields survive.
func (u RewardSettingUpdate) columns(adminID string) map[string]any {
	cols := map[string]any{"updated_by": adminID}
	if u.BaseXPReward != nil {
		cols["base_xp_reward"] = *u.BaseXPReward
	}
	if u.BaseCreditCost != nil {
		cols["base_credit_cost"] = *u.BaseCreditCost
	}
	if u.Multiplier != nil {
		cols["multiplier"] = *u.Multiplier
	}
	if u.CooldownMinutes != nil {
		cols["cooldown_minutes"] = *u.CooldownMinutes
	}
	if u.IsActive != nil {
		cols["is_active"] = *u.IsActive
	}
	return cols
}

// Update applies the non-nil fields and invalidates the cached copies.
func (s *RewardSettingsService) Update(ctx context.Context, featureID string, update RewardSettingUpdate, adminID string) (*models.RewardSetting, error) {
	if err := Validate(update); err != nil {
		return nil, err
	}
	if update.empty() {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "no fields to update")
	}

	setting, err := s.Store.UpdateRewardSetting(ctx, featureID, update.columns(adminID))
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, featureID); err != nil {
			logger.Warn("Reward setting cache invalidation failed", "feature_id", featureID, "error", err)
		}
	}

	logger.Info("Reward setting updated", "feature_id", featureID, "admin_id", adminID)
	return setting, nil
}
