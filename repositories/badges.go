package repositories

import (
	"context"

	"agentgift-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) HasBadge(ctx context.Context, userID, badgeID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.BadgeEarnedLog{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, internal(err, "failed to check badge")
	}
	return count > 0, nil
}

// AwardBadge inserts the badge unless the user already has it; the bool reports an insert.
func (s *Store) AwardBadge(ctx context.Context, badge *models.BadgeEarnedLog) (bool, error) {
	if badge.ID == "" {
		badge.ID = uuid.NewString()
	}
	result := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(badge)
	if result.Error != nil {
		return false, internal(result.Error, "failed to award badge")
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) RevokeBadge(ctx context.Context, userID, badgeID string) (bool, error) {
	result := s.DB.WithContext(ctx).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Delete(&models.BadgeEarnedLog{})
	if result.Error != nil {
		return false, internal(result.Error, "failed to revoke badge")
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) ListBadges(ctx context.Context, userID string) ([]models.BadgeEarnedLog, error) {
	var badges []models.BadgeEarnedLog
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&badges).Error
	if err != nil {
		return nil, internal(err, "failed to load badges")
	}
	return badges, nil
}
