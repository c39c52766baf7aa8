package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockProfile reads the profile row with SELECT ... FOR UPDATE inside tx.
func lockProfile(tx *gorm.DB, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &profile, nil
}

// ApplyXPDelta clamps the new balance at zero and records the delta actually applied.
func (s *Store) ApplyXPDelta(ctx context.Context, entry models.XPLog) (*models.BalanceChange, error) {
	var change *models.BalanceChange
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := lockProfile(tx, entry.UserID)
		if err != nil {
			return err
		}

		next := models.ClampBalance(profile.XP, entry.Amount)
		if err := tx.Model(profile).Update("xp", next).Error; err != nil {
			return internal(err, "failed to update xp")
		}

		entry.ID = uuid.NewString()
		entry.Amount = next - profile.XP
		if err := tx.Create(&entry).Error; err != nil {
			return internal(err, "failed to write xp log")
		}

		change = &models.BalanceChange{
			UserID:       profile.ID,
			Previous:     profile.XP,
			New:          next,
			DeltaApplied: entry.Amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *Store) ApplyCreditDelta(ctx context.Context, entry models.CreditTransaction) (*models.BalanceChange, error) {
	var change *models.BalanceChange
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := lockProfile(tx, entry.UserID)
		if err != nil {
			return err
		}

		next := models.ClampBalance(profile.Credits, entry.Amount)
		if err := tx.Model(profile).Update("credits", next).Error; err != nil {
			return internal(err, "failed to update credits")
		}

		entry.ID = uuid.NewString()
		entry.Amount = next - profile.Credits
		if err := tx.Create(&entry).Error; err != nil {
			return internal(err, "failed to write credit transaction")
		}

		change = &models.BalanceChange{
			UserID:       profile.ID,
			Previous:     profile.Credits,
			New:          next,
			DeltaApplied: entry.Amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// SpendOnFeature charges one use of a feature and pays out its XP in a single transaction.
func (s *Store) SpendOnFeature(ctx context.Context, userID string, setting models.RewardSetting) (*models.UserProfile, *models.FeatureUsage, error) {
	var (
		updated *models.UserProfile
		usage   *models.FeatureUsage
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := lockProfile(tx, userID)
		if err != nil {
			return err
		}

		cost := setting.BaseCreditCost
		if profile.Credits < cost {
			return apperrors.New(apperrors.ErrCodeInsufficientFunds,
				fmt.Sprintf("insufficient credits: have %d, need %d", profile.Credits, cost))
		}
		xp := setting.EffectiveXP()

		if err := tx.Model(profile).Updates(map[string]interface{}{
			"credits": profile.Credits - cost,
			"xp":      profile.XP + xp,
		}).Error; err != nil {
			return internal(err, "failed to update balances")
		}

		featureID := setting.FeatureID
		if cost > 0 {
			txn := models.CreditTransaction{
				ID:        uuid.NewString(),
				UserID:    userID,
				Amount:    -cost,
				Reason:    models.ReasonFeatureUse,
				FeatureID: &featureID,
			}
			if err := tx.Create(&txn).Error; err != nil {
				return internal(err, "failed to write credit transaction")
			}
		}
		if xp > 0 {
			entry := models.XPLog{
				ID:        uuid.NewString(),
				UserID:    userID,
				Amount:    xp,
				Reason:    models.ReasonFeatureUse,
				FeatureID: &featureID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return internal(err, "failed to write xp log")
			}
		}

		usage = &models.FeatureUsage{
			ID:           uuid.NewString(),
			UserID:       userID,
			FeatureID:    featureID,
			XPAwarded:    xp,
			CreditsSpent: cost,
		}
		if err := tx.Create(usage).Error; err != nil {
			return internal(err, "failed to record feature usage")
		}

		profile.Credits -= cost
		profile.XP += xp
		updated = profile
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, usage, nil
}

func (s *Store) RecentXPLogs(ctx context.Context, userID string, limit int) ([]models.XPLog, error) {
	var logs []models.XPLog
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(clampLimit(limit, 20, 200)).
		Find(&logs).Error
	if err != nil {
		return nil, internal(err, "failed to load xp logs")
	}
	return logs, nil
}

func (s *Store) RecentCreditTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(clampLimit(limit, 20, 200)).
		Find(&txns).Error
	if err != nil {
		return nil, internal(err, "failed to load credit transactions")
	}
	return txns, nil
}

func (s *Store) CreditTransactionsSince(ctx context.Context, since time.Time) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	err := s.DB.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, internal(err, "failed to load credit transactions")
	}
	return txns, nil
}

func (s *Store) CountFeatureUses(ctx context.Context, featureID string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.FeatureUsage{}).
		Where("feature_id = ? AND created_at >= ?", featureID, since).
		Count(&count).Error
	if err != nil {
		return 0, internal(err, "failed to count feature usage")
	}
	return count, nil
}

// LastFeatureUse returns nil, nil when the user never used the feature.
func (s *Store) LastFeatureUse(ctx context.Context, userID, featureID string) (*models.FeatureUsage, error) {
	var usage models.FeatureUsage
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND feature_id = ?", userID, featureID).
		Order("created_at DESC").
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err, "failed to load feature usage")
	}
	return &usage, nil
}
