package models

import (
	"time"
)

// EmotionFilter narrows emotional signature listings. Zero values mean "no filter".
type EmotionFilter struct {
	UserID  string
	Emotion string
	Since   time.Time
	Limit   int
}

// SearchQuery is the per-table query issued by the memory-vault aggregator.
type SearchQuery struct {
	Text     string
	UserID   string
	Emotion  string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}
