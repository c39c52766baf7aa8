package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile is the local view of an AgentGift account: tier, balances and the admin flag.
// XP and Credits are only ever changed through the ledger repository, which writes the
// matching XPLog / CreditTransaction row in the same transaction.
type UserProfile struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username string `gorm:"index;not null" json:"username"`
	Email    string `gorm:"index" json:"email,omitempty"`
	Tier     Tier   `gorm:"type:varchar(16);not null;default:'free'" json:"tier"`
	XP       int64  `gorm:"not null;default:0" json:"xp"`
	Credits  int64  `gorm:"not null;default:0" json:"credits"`
	IsAdmin  bool   `gorm:"not null;default:false" json:"is_admin"`

	Timestamps
}

func (UserProfile) TableName() string {
	return "profiles"
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
