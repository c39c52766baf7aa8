package models

import (
	"time"
)

type NominationStatus string

const (
	NominationPending  NominationStatus = "pending"
	NominationApproved NominationStatus = "approved"
	NominationRejected NominationStatus = "rejected"
)

// Nomination is a GiftBridge request to gift someone in need. Reviews move it out of
// pending exactly once.
type Nomination struct {
	ID              string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	NomineeUserID   string           `gorm:"type:uuid;not null;index" json:"nominee_user_id"`
	NominatorUserID string           `gorm:"type:uuid;not null;index" json:"nominator_user_id"`
	Reason          string           `gorm:"type:text;not null" json:"reason"`
	Status          NominationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ReviewedBy      *string          `gorm:"type:varchar(64)" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

// RevealSession is a scheduled gift reveal. SessionKey is gift_id + "-" + recipient_id.
type RevealSession struct {
	ID          string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SessionKey  string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"session_key"`
	GiftID      string     `gorm:"type:varchar(128)" json:"gift_id"`
	RecipientID string     `gorm:"type:varchar(128)" json:"recipient_id"`
	CreatedBy   string     `gorm:"type:varchar(64)" json:"created_by"`
	RevealedAt  *time.Time `json:"revealed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
