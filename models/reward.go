package models

import (
	"time"
)

// RewardSetting holds the XP/credit parameters for one feature. Admin updates write it
// directly; nothing derived is stored alongside.
type RewardSetting struct {
	FeatureID       string    `gorm:"primaryKey;type:varchar(64)" json:"feature_id"`
	BaseXPReward    int64     `gorm:"not null;default:0" json:"base_xp_reward"`
	BaseCreditCost  int64     `gorm:"not null;default:0" json:"base_credit_cost"`
	Multiplier      float64   `gorm:"not null;default:1" json:"multiplier"`
	CooldownMinutes int       `gorm:"not null;default:0" json:"cooldown_minutes"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	UpdatedBy       string    `gorm:"type:varchar(64)" json:"updated_by,omitempty"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EffectiveXP is the XP a single use awards: base reward scaled by the multiplier, rounded half up.
func (r RewardSetting) EffectiveXP() int64 {
	return int64(float64(r.BaseXPReward)*r.Multiplier + 0.5)
}

// DefaultRewardSettings seeds a fresh database.
var DefaultRewardSettings = []RewardSetting{
	{FeatureID: FeatureGiftSuggestion, BaseXPReward: 10, BaseCreditCost: 1, Multiplier: 1, CooldownMinutes: 0, IsActive: true},
	{FeatureID: FeatureVoiceAssistant, BaseXPReward: 5, BaseCreditCost: 2, Multiplier: 1, CooldownMinutes: 1, IsActive: true},
	{FeatureID: FeatureMemoryVaultSearch, BaseXPReward: 3, BaseCreditCost: 1, Multiplier: 1, CooldownMinutes: 0, IsActive: true},
	{FeatureID: FeatureRevealSession, BaseXPReward: 25, BaseCreditCost: 5, Multiplier: 1.5, CooldownMinutes: 60, IsActive: true},
	{FeatureID: FeatureEmotionalCheckin, BaseXPReward: 15, BaseCreditCost: 0, Multiplier: 1, CooldownMinutes: 720, IsActive: true},
}
