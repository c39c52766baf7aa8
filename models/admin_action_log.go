package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionStatusSuccess = "success"
	ActionStatusError   = "error"
)

// AdminActionLog is the audit trail for every dispatcher invocation.
type AdminActionLog struct {
	ID           string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AdminID      string         `gorm:"type:varchar(64);not null;index" json:"admin_id"`
	ActionType   string         `gorm:"type:varchar(64);not null;index" json:"action_type"`
	Request      datatypes.JSON `gorm:"type:jsonb" json:"request"`
	Response     datatypes.JSON `gorm:"type:jsonb" json:"response"`
	Status       string         `gorm:"type:varchar(16);not null;index" json:"status"`
	ErrorMessage string         `gorm:"type:text" json:"error_message,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
