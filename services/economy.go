package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/logger"
	"agentgift-service/models"
)

// cooldownRemaining is how long until a feature last used at lastUse may be used again.
func cooldownRemaining(lastUse time.Time, cooldownMinutes int, now time.Time) time.Duration {
	if cooldownMinutes <= 0 {
		return 0
	}
	remaining := lastUse.Add(time.Duration(cooldownMinutes) * time.Minute).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CooldownError carries the time left before a feature may be used again.
type CooldownError struct {
	Wait time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("retry after %ds", int64(e.Wait.Seconds()))
}

type FeatureAccess struct {
	FeatureID         string      `json:"feature_id"`
	MinTier           models.Tier `json:"min_tier"`
	Allowed           bool        `json:"allowed"`
	Reason            string      `json:"reason,omitempty"`
	CreditCost        int64       `json:"credit_cost"`
	XPReward          int64       `json:"xp_reward"`
	RetryAfterSeconds int64       `json:"retry_after_seconds,omitempty"`
}

type FeatureUseResult struct {
	FeatureID     string   `json:"feature_id"`
	XPAwarded     int64    `json:"xp_awarded"`
	CreditsSpent  int64    `json:"credits_spent"`
	XP            int64    `json:"xp"`
	Credits       int64    `json:"credits"`
	Level         int      `json:"level"`
	BadgesAwarded []string `json:"badges_awarded,omitempty"`
}

// EconomyStore is what feature gating and spending need.
type EconomyStore interface {
	UserStore
	LedgerStore
	ModerationStore
	BadgeStore
}

type EconomyService struct {
	Store    EconomyStore
	Settings *RewardSettingsService
	Badges   *BadgeService
	Now      func() time.Time
}

func NewEconomyService(store EconomyStore, settings *RewardSettingsService) *EconomyService {
	return &EconomyService{
		Store:    store,
		Settings: settings,
		Badges:   NewBadgeService(store),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// check runs the gates in order: active, tier, ban, cooldown, credits.
func (s *EconomyService) check(ctx context.Context, profile *models.UserProfile, setting *models.RewardSetting, bans []models.FeatureBan, now time.Time) (time.Duration, error) {
	if !setting.IsActive {
		return 0, apperrors.New(apperrors.ErrCodeForbidden, "feature is disabled")
	}

	minTier, ok := models.FeatureMinTier[setting.FeatureID]
	if !ok {
		minTier = models.TierFree
	}
	if !profile.Tier.AtLeast(minTier) {
		return 0, apperrors.New(apperrors.ErrCodeForbidden, fmt.Sprintf("requires %s tier", minTier))
	}

	for _, b := range bans {
		if b.FeatureID == setting.FeatureID && b.Active(now) {
			return 0, apperrors.New(apperrors.ErrCodeForbidden, "banned from this feature")
		}
	}

	if setting.CooldownMinutes > 0 {
		last, err := s.Store.LastFeatureUse(ctx, profile.ID, setting.FeatureID)
		if err != nil {
			return 0, err
		}
		if last != nil {
			if wait := cooldownRemaining(last.CreatedAt, setting.CooldownMinutes, now); wait > 0 {
				return wait, apperrors.Wrap(&CooldownError{Wait: wait}, apperrors.ErrCodeRateLimited,
					fmt.Sprintf("cooldown active, retry in %ds", int64(wait.Seconds())))
			}
		}
	}

	if profile.Credits < setting.BaseCreditCost {
		return 0, apperrors.New(apperrors.ErrCodeInsufficientFunds,
			fmt.Sprintf("insufficient credits: have %d, need %d", profile.Credits, setting.BaseCreditCost))
	}
	return 0, nil
}

// Access reports, per configured feature, whether the user could use it right now.
func (s *EconomyService) Access(ctx context.Context, userID string) ([]FeatureAccess, error) {
	profile, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	bans, err := s.Store.ActiveBans(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	out := make([]FeatureAccess, 0, len(settings))
	for i := range settings {
		setting := &settings[i]
		access := FeatureAccess{
			FeatureID:  setting.FeatureID,
			MinTier:    models.FeatureMinTier[setting.FeatureID],
			Allowed:    true,
			CreditCost: setting.BaseCreditCost,
			XPReward:   setting.EffectiveXP(),
		}
		if access.MinTier == "" {
			access.MinTier = models.TierFree
		}

		wait, err := s.check(ctx, profile, setting, bans, now)
		if err != nil {
			if apperrors.Code(err) == apperrors.ErrCodeInternalError {
				return nil, err
			}
			access.Allowed = false
			access.Reason = apperrors.Message(err)
			access.RetryAfterSeconds = int64(wait.Seconds())
		}
		out = append(out, access)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].FeatureID < out[j].FeatureID })
	return out, nil
}

// UseFeature charges the credit cost and awards XP for one use.
func (s *EconomyService) UseFeature(ctx context.Context, userID, featureID string) (*FeatureUseResult, error) {
	setting, err := s.Settings.Get(ctx, featureID)
	if err != nil {
		return nil, err
	}
	profile, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	bans, err := s.Store.ActiveBans(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if _, err := s.check(ctx, profile, setting, bans, now); err != nil {
		return nil, err
	}

	updated, usage, err := s.Store.SpendOnFeature(ctx, userID, *setting)
	if err != nil {
		return nil, err
	}

	result := &FeatureUseResult{
		FeatureID:    featureID,
		XPAwarded:    usage.XPAwarded,
		CreditsSpent: usage.CreditsSpent,
		XP:           updated.XP,
		Credits:      updated.Credits,
		Level:        LevelForXP(updated.XP),
	}
	if usage.XPAwarded > 0 {
		result.BadgesAwarded, err = s.Badges.AutoAwardBadges(ctx, updated)
		if err != nil {
			logger.Warn("Badge auto-award failed", "user_id", userID, "error", err)
		}
	}

	logger.Info("Feature used", "user_id", userID, "feature_id", featureID,
		"xp_awarded", usage.XPAwarded, "credits_spent", usage.CreditsSpent)
	return result, nil
}
