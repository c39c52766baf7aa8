package models

import (
	"time"
)

// BadgeType: static catalog entry. Threshold is evaluated against a profile after XP changes;
// an empty threshold means the badge is only ever assigned by hand.
type BadgeType struct {
	ID          string           `json:"id"`   // e.g. "first_gift", "empathy_engine"
	Name        string           `json:"name"` // "First Gift", "Empathy Engine"
	Description string           `json:"description"`
	Rarity      string           `json:"rarity"` // common, rare, epic, legendary
	Threshold   map[string]int64 `json:"threshold,omitempty"`
}

// BadgeEarnedLog: awarded instance. (user_id, badge_id) is unique.
type BadgeEarnedLog struct {
	ID            string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_badge_user_badge,priority:1" json:"user_id"`
	BadgeID       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_badge_user_badge,priority:2;index" json:"badge_id"`
	Reason        string    `gorm:"type:text" json:"reason"`
	AdminAssigned bool      `gorm:"not null;default:false" json:"admin_assigned"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (BadgeEarnedLog) TableName() string {
	return "badge_earned_logs"
}

var BadgeCatalog = []BadgeType{
	{ID: "first_gift", Name: "First Gift", Description: "Sent your first AI-assisted gift", Rarity: "common"},
	{ID: "xp_100", Name: "Warm Welcome", Description: "Earned 100 XP", Rarity: "common", Threshold: map[string]int64{"xp": 100}},
	{ID: "xp_1000", Name: "Thoughtful Giver", Description: "Earned 1,000 XP", Rarity: "rare", Threshold: map[string]int64{"xp": 1000}},
	{ID: "xp_5000", Name: "Gift Whisperer", Description: "Earned 5,000 XP", Rarity: "epic", Threshold: map[string]int64{"xp": 5000}},
	{ID: "xp_25000", Name: "Giftverse Legend", Description: "Earned 25,000 XP", Rarity: "legendary", Threshold: map[string]int64{"xp": 25000}},
	{ID: "empathy_engine", Name: "Empathy Engine", Description: "Responded to ten emotional check-ins", Rarity: "rare"},
	{ID: "memory_keeper", Name: "Memory Keeper", Description: "Saved 25 memories to the vault", Rarity: "rare"},
	{ID: "surprise_architect", Name: "Surprise Architect", Description: "Hosted five reveal sessions", Rarity: "epic"},
	{ID: "agent_ally", Name: "Agent Ally", Description: "Upgraded to the Agent tier", Rarity: "epic", Threshold: map[string]int64{"tier": 3}},
	{ID: "giftbridge_hero", Name: "GiftBridge Hero", Description: "Nominated someone who was approved", Rarity: "legendary"},
}

// FindBadge looks a badge up in the catalog.
func FindBadge(id string) (BadgeType, bool) {
	for _, b := range BadgeCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return BadgeType{}, false
}
