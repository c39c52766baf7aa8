package models

import (
	"time"
)

// FeatureBan blocks one user from one feature. A nil ExpiresAt is permanent.
type FeatureBan struct {
	ID        string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string     `gorm:"type:uuid;not null;index:idx_ban_user_feature,priority:1" json:"user_id"`
	FeatureID string     `gorm:"type:varchar(64);not null;index:idx_ban_user_feature,priority:2" json:"feature_id"`
	Reason    string     `gorm:"type:text" json:"reason"`
	BannedBy  string     `gorm:"type:varchar(64)" json:"banned_by"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Active reports whether the ban still applies at now.
func (b FeatureBan) Active(now time.Time) bool {
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

// Announcement is broadcast to every user at or above AudienceTier (all users when empty).
type Announcement struct {
	ID           string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Slug         string    `gorm:"type:varchar(160);index" json:"slug"`
	Title        string    `gorm:"not null" json:"title"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	AudienceTier Tier      `gorm:"type:varchar(16)" json:"audience_tier,omitempty"`
	CreatedBy    string    `gorm:"type:varchar(64)" json:"created_by"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// VisibleTo reports whether a user on tier t should see the announcement.
func (a Announcement) VisibleTo(t Tier) bool {
	return a.AudienceTier == "" || t.AtLeast(a.AudienceTier)
}

// ImpersonationSession lets an admin act as a user until ExpiresAt or EndedAt.
type ImpersonationSession struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	AdminID      string     `gorm:"type:varchar(64);not null;index" json:"admin_id"`
	TargetUserID string     `gorm:"type:uuid;not null;index" json:"target_user_id"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expires_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}
