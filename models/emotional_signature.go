package models

import (
	"sort"
	"time"
)

// Suggested actions assigned to an emotional signature.
const (
	SuggestSendComfortGift = "send_comfort_gift"
	SuggestCelebrateMoment = "celebrate_moment"
	SuggestScheduleCheckIn = "schedule_check_in"
	SuggestLogOnly         = "log_only"
)

// EmotionalSignature is one detected emotion pushed by the webhook. WebhookDeliveredAt stays
// nil until the outbound Make.com POST succeeds.
type EmotionalSignature struct {
	ID                 string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID             string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Emotion            string     `gorm:"type:varchar(32);not null;index" json:"emotion"`
	Confidence         float64    `gorm:"not null" json:"confidence"`
	Context            string     `gorm:"type:text" json:"context"`
	SuggestedAction    string     `gorm:"type:varchar(32);not null" json:"suggested_action"`
	Source             string     `gorm:"type:varchar(32)" json:"source,omitempty"`
	WebhookDeliveredAt *time.Time `gorm:"index" json:"webhook_delivered_at,omitempty"`
	WebhookAttempts    int        `gorm:"not null;default:0" json:"webhook_attempts"`
	CreatedAt          time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// EmotionalAnomaly is a user whose recent signatures cluster around negative emotions.
type EmotionalAnomaly struct {
	UserID        string    `json:"user_id"`
	Signatures    int64     `json:"signatures"`
	AvgConfidence float64   `json:"avg_confidence"`
	LastSeen      time.Time `json:"last_seen"`
}

var negativeEmotions = map[string]bool{
	"sad": true, "anxious": true, "lonely": true, "stressed": true, "angry": true,
	"grief": true, "frustrated": true, "overwhelmed": true, "afraid": true, "worried": true,
}

var positiveEmotions = map[string]bool{
	"happy": true, "joyful": true, "excited": true, "grateful": true, "proud": true,
	"loved": true, "romantic": true, "hopeful": true, "content": true, "celebratory": true,
}

// IsNegativeEmotion reports whether emotion (lowercase) is in the negative set.
func IsNegativeEmotion(emotion string) bool {
	return negativeEmotions[emotion]
}

func IsPositiveEmotion(emotion string) bool {
	return positiveEmotions[emotion]
}

// NegativeEmotions lists the negative set, for SQL IN clauses.
func NegativeEmotions() []string {
	out := make([]string, 0, len(negativeEmotions))
	for e := range negativeEmotions {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
