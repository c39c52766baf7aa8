package services

import (
	"context"
	"time"

	"agentgift-service/models"
)

// Store interfaces are satisfied by repositories.Store; tests use in-memory fakes.

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.UserProfile, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.UserProfile, error)
}

type LedgerStore interface {
	// ApplyXPDelta locks the profile row, clamps at zero and logs the applied delta.
	ApplyXPDelta(ctx context.Context, entry models.XPLog) (*models.BalanceChange, error)
	ApplyCreditDelta(ctx context.Context, entry models.CreditTransaction) (*models.BalanceChange, error)
	RecentXPLogs(ctx context.Context, userID string, limit int) ([]models.XPLog, error)
	RecentCreditTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error)
	CreditTransactionsSince(ctx context.Context, since time.Time) ([]models.CreditTransaction, error)
	CountFeatureUses(ctx context.Context, featureID string, since time.Time) (int64, error)
	LastFeatureUse(ctx context.Context, userID, featureID string) (*models.FeatureUsage, error)
	// SpendOnFeature deducts the setting's credit cost and awards its XP in one transaction.
	SpendOnFeature(ctx context.Context, userID string, setting models.RewardSetting) (*models.UserProfile, *models.FeatureUsage, error)
}

type BadgeStore interface {
	HasBadge(ctx context.Context, userID, badgeID string) (bool, error)
	AwardBadge(ctx context.Context, badge *models.BadgeEarnedLog) (bool, error)
	RevokeBadge(ctx context.Context, userID, badgeID string) (bool, error)
	ListBadges(ctx context.Context, userID string) ([]models.BadgeEarnedLog, error)
}

type ModerationStore interface {
	CreateFeatureBan(ctx context.Context, ban *models.FeatureBan) error
	LiftFeatureBans(ctx context.Context, userID, featureID string) (int64, error)
	ActiveBans(ctx context.Context, userID string, now time.Time) ([]models.FeatureBan, error)
	DeleteExpiredBans(ctx context.Context, now time.Time) (int64, error)
	CreateImpersonation(ctx context.Context, session *models.ImpersonationSession) error
	GetImpersonation(ctx context.Context, id string) (*models.ImpersonationSession, error)
	EndImpersonation(ctx context.Context, id string, endedAt time.Time) error
}

type AnnouncementStore interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	ListAnnouncements(ctx context.Context, since time.Time, limit int) ([]models.Announcement, error)
	ListAnnouncementsForTier(ctx context.Context, tier models.Tier, since time.Time, limit int) ([]models.Announcement, error)
}

type EmotionStore interface {
	CreateSignature(ctx context.Context, sig *models.EmotionalSignature) error
	ListSignatures(ctx context.Context, filter models.EmotionFilter) ([]models.EmotionalSignature, error)
	UndeliveredSignatures(ctx context.Context, maxAttempts, limit int) ([]models.EmotionalSignature, error)
	MarkSignatureDelivered(ctx context.Context, id string, at time.Time) error
	IncrementSignatureAttempts(ctx context.Context, id string) error
	DetectAnomalies(ctx context.Context, since time.Time, minCount int64, minConfidence float64) ([]models.EmotionalAnomaly, error)
}

type AuditStore interface {
	RecordAdminAction(ctx context.Context, entry *models.AdminActionLog) error
}

type HealthStore interface {
	HealthSnapshot(ctx context.Context, now time.Time) (*models.HealthSnapshot, error)
}

type RewardSettingsStore interface {
	ListRewardSettings(ctx context.Context) ([]models.RewardSetting, error)
	GetRewardSetting(ctx context.Context, featureID string) (*models.RewardSetting, error)
	// UpdateRewardSetting writes only the given columns and returns the stored row.
	UpdateRewardSetting(ctx context.Context, featureID string, columns map[string]any) (*models.RewardSetting, error)
}

type SearchStore interface {
	SearchXPLogs(ctx context.Context, q models.SearchQuery) ([]models.XPLog, error)
	SearchCreditTransactions(ctx context.Context, q models.SearchQuery) ([]models.CreditTransaction, error)
	SearchBadgeLogs(ctx context.Context, q models.SearchQuery) ([]models.BadgeEarnedLog, error)
	SearchSignatures(ctx context.Context, q models.SearchQuery) ([]models.EmotionalSignature, error)
}

type NominationStore interface {
	CreateNomination(ctx context.Context, n *models.Nomination) error
	ListNominations(ctx context.Context, status models.NominationStatus, limit int) ([]models.Nomination, error)
	// ReviewNomination moves a pending nomination to status; it returns CONFLICT when not pending.
	ReviewNomination(ctx context.Context, id string, status models.NominationStatus, reviewer string, at time.Time) (*models.Nomination, error)
}

type RevealStore interface {
	CreateRevealSession(ctx context.Context, s *models.RevealSession) error
	MarkRevealed(ctx context.Context, key string, at time.Time) (*models.RevealSession, error)
}

// AdminStore is everything the admin dispatcher touches.
type AdminStore interface {
	UserStore
	LedgerStore
	BadgeStore
	ModerationStore
	AnnouncementStore
	EmotionStore
	AuditStore
	HealthStore
}
