package services

import (
	"context"
	"fmt"

	"agentgift-service/apperrors"
	"agentgift-service/logger"
	"agentgift-service/models"
)

type BadgeService struct {
	Store BadgeStore
}

func NewBadgeService(store BadgeStore) *BadgeService {
	return &BadgeService{Store: store}
}

// Assign awards a catalog badge unless the user already holds it.
func (s *BadgeService) Assign(ctx context.Context, userID, badgeID, reason string, byAdmin bool) (assigned, alreadyHad bool, err error) {
	if _, ok := models.FindBadge(badgeID); !ok {
		return false, false, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("unknown badge %q", badgeID))
	}

	has, err := s.Store.HasBadge(ctx, userID, badgeID)
	if err != nil {
		return false, false, err
	}
	if has {
		return false, true, nil
	}

	inserted, err := s.Store.AwardBadge(ctx, &models.BadgeEarnedLog{
		UserID:        userID,
		BadgeID:       badgeID,
		Reason:        reason,
		AdminAssigned: byAdmin,
	})
	if err != nil {
		return false, false, err
	}
	// Lost a race with a concurrent award.
	if !inserted {
		return false, true, nil
	}
	return true, false, nil
}

// AutoAwardBadges checks all badge thresholds against a profile after a balance update.
func (s *BadgeService) AutoAwardBadges(ctx context.Context, profile *models.UserProfile) ([]string, error) {
	var awarded []string
	for _, badge := range models.BadgeCatalog {
		if len(badge.Threshold) == 0 || !meetsThreshold(profile, badge.Threshold) {
			continue
		}
		assigned, _, err := s.Assign(ctx, profile.ID, badge.ID, "threshold reached", false)
		if err != nil {
			return awarded, err
		}
		if assigned {
			awarded = append(awarded, badge.ID)
			logger.Info("Badge awarded", "user_id", profile.ID, "badge_id", badge.ID)
		}
	}
	return awarded, nil
}

func meetsThreshold(profile *models.UserProfile, req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case "xp":
			if profile.XP < required {
				return false
			}
		case "level":
			if int64(LevelForXP(profile.XP)) < required {
				return false
			}
		case "tier":
			if int64(tierIndex(profile.Tier)) < required {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func tierIndex(t models.Tier) int {
	for i, candidate := range []models.Tier{models.TierFree, models.TierPlus, models.TierPro, models.TierAgent} {
		if t == candidate {
			return i
		}
	}
	return 0
}
