package repositories

import (
	"context"
	"time"

	"agentgift-service/models"

	"github.com/google/uuid"
)

func (s *Store) CreateFeatureBan(ctx context.Context, ban *models.FeatureBan) error {
	if ban.ID == "" {
		ban.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(ban).Error; err != nil {
		return internal(err, "failed to create feature ban")
	}
	return nil
}

// LiftFeatureBans deletes every ban the user has on the feature, expired or not.
func (s *Store) LiftFeatureBans(ctx context.Context, userID, featureID string) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("user_id = ? AND feature_id = ?", userID, featureID).
		Delete(&models.FeatureBan{})
	if result.Error != nil {
		return 0, internal(result.Error, "failed to lift feature ban")
	}
	return result.RowsAffected, nil
}

func (s *Store) ActiveBans(ctx context.Context, userID string, now time.Time) ([]models.FeatureBan, error) {
	var bans []models.FeatureBan
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&bans).Error
	if err != nil {
		return nil, internal(err, "failed to load feature bans")
	}
	return bans, nil
}

func (s *Store) DeleteExpiredBans(ctx context.Context, now time.Time) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&models.FeatureBan{})
	if result.Error != nil {
		return 0, internal(result.Error, "failed to sweep expired bans")
	}
	return result.RowsAffected, nil
}

func (s *Store) CreateImpersonation(ctx context.Context, session *models.ImpersonationSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(session).Error; err != nil {
		return internal(err, "failed to create impersonation session")
	}
	return nil
}

func (s *Store) GetImpersonation(ctx context.Context, id string) (*models.ImpersonationSession, error) {
	var session models.ImpersonationSession
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, notFound(err, "impersonation session")
	}
	return &session, nil
}

func (s *Store) EndImpersonation(ctx context.Context, id string, endedAt time.Time) error {
	err := s.DB.WithContext(ctx).
		Model(&models.ImpersonationSession{}).
		Where("id = ?", id).
		Update("ended_at", endedAt).Error
	if err != nil {
		return internal(err, "failed to end impersonation session")
	}
	return nil
}

func (s *Store) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return internal(err, "failed to create announcement")
	}
	return nil
}

// ListAnnouncements returns announcements created after since, oldest first.
func (s *Store) ListAnnouncements(ctx context.Context, since time.Time, limit int) ([]models.Announcement, error) {
	var out []models.Announcement
	err := s.DB.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at ASC").
		Limit(clampLimit(limit, 50, 200)).
		Find(&out).Error
	if err != nil {
		return nil, internal(err, "failed to load announcements")
	}
	return out, nil
}

// ListAnnouncementsForTier returns the newest announcements after since that tier may see.
func (s *Store) ListAnnouncementsForTier(ctx context.Context, tier models.Tier, since time.Time, limit int) ([]models.Announcement, error) {
	var out []models.Announcement
	err := s.DB.WithContext(ctx).
		Where("created_at > ?", since).
		Where("audience_tier IS NULL OR audience_tier = '' OR audience_tier IN ?", tier.VisibleTiers()).
		Order("created_at DESC").
		Limit(clampLimit(limit, 50, 200)).
		Find(&out).Error
	if err != nil {
		return nil, internal(err, "failed to load announcements")
	}
	return out, nil
}
