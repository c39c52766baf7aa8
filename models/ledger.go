package models

import (
	"time"
)

// XPLog is an append-only record of every XP change.
type XPLog struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:text" json:"reason"`
	FeatureID *string   `gorm:"type:varchar(64);index" json:"feature_id,omitempty"`
	AdminID   *string   `gorm:"type:uuid;index" json:"admin_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (XPLog) TableName() string {
	return "xp_logs"
}

// CreditTransaction is an append-only record of every credit change. Spending is negative.
type CreditTransaction struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:text" json:"reason"`
	FeatureID *string   `gorm:"type:varchar(64);index" json:"feature_id,omitempty"`
	AdminID   *string   `gorm:"type:uuid;index" json:"admin_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// Ledger reasons
const (
	ReasonAdminAdjustment = "admin_adjustment"
	ReasonBonus5XP        = "5xp_bonus"
	ReasonFeatureUse      = "feature_use"
)

// BalanceChange is the outcome of a single balance mutation.
type BalanceChange struct {
	UserID       string `json:"user_id"`
	Previous     int64  `json:"previous"`
	New          int64  `json:"new"`
	DeltaApplied int64  `json:"delta_applied"`
}

// ClampBalance applies delta to current with a floor of zero.
func ClampBalance(current, delta int64) int64 {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

// FeatureUsage records one paid use of a feature; the latest row drives cooldowns.
type FeatureUsage struct {
	ID           string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index:idx_usage_user_feature,priority:1" json:"user_id"`
	FeatureID    string    `gorm:"type:varchar(64);not null;index:idx_usage_user_feature,priority:2" json:"feature_id"`
	XPAwarded    int64     `gorm:"not null;default:0" json:"xp_awarded"`
	CreditsSpent int64     `gorm:"not null;default:0" json:"credits_spent"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
