package models

import (
	"time"
)

// HealthSnapshot summarises the Giftverse economy for admins.
type HealthSnapshot struct {
	GeneratedAt          time.Time      `json:"generated_at"`
	TotalUsers           int64          `json:"total_users"`
	UsersByTier          map[Tier]int64 `json:"users_by_tier"`
	XPIssued7d           int64          `json:"xp_issued_7d"`
	XPRemoved7d          int64          `json:"xp_removed_7d"`
	CreditsSpent7d       int64          `json:"credits_spent_7d"`
	CreditsGranted7d     int64          `json:"credits_granted_7d"`
	BadgesAwarded7d      int64          `json:"badges_awarded_7d"`
	ActiveBans           int64          `json:"active_bans"`
	EmotionalSignals7d   int64          `json:"emotional_signals_7d"`
	PendingNominations   int64          `json:"pending_nominations"`
	AdminActions24h      int64          `json:"admin_actions_24h"`
	AdminActionErrors24h int64          `json:"admin_action_errors_24h"`
}
