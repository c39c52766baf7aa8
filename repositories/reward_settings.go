package repositories

import (
	"context"

	"agentgift-service/apperrors"
	"agentgift-service/models"
)

func (s *Store) ListRewardSettings(ctx context.Context) ([]models.RewardSetting, error) {
	var settings []models.RewardSetting
	if err := s.DB.WithContext(ctx).Order("feature_id ASC").Find(&settings).Error; err != nil {
		return nil, internal(err, "failed to load reward settings")
	}
	return settings, nil
}

func (s *Store) GetRewardSetting(ctx context.Context, featureID string) (*models.RewardSetting, error) {
	var setting models.RewardSetting
	if err := s.DB.WithContext(ctx).Where("feature_id = ?", featureID).First(&setting).Error; err != nil {
		return nil, notFound(err, "reward setting")
	}
	return &setting, nil
}

func (s *Store) UpdateRewardSetting(ctx context.Context, featureID string, columns map[string]any) (*models.RewardSetting, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.RewardSetting{}).
		Where("feature_id = ?", featureID).
		Updates(columns)
	if res.Error != nil {
		return nil, internal(res.Error, "failed to update reward setting")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "reward setting not found")
	}
	return s.GetRewardSetting(ctx, featureID)
}
