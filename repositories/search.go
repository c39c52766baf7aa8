package repositories

import (
	"context"
	"strings"

	"agentgift-service/models"

	"gorm.io/gorm"
)

// scoped applies the filters shared by every memory-vault source.
func scoped(db *gorm.DB, q models.SearchQuery) *gorm.DB {
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.DateFrom != nil {
		db = db.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("created_at <= ?", *q.DateTo)
	}
	return db.Order("created_at DESC").Limit(clampLimit(q.Limit, 50, 200))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeTerm wraps text for a contains match; pair it with likeEscape in the query.
func likeTerm(text string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(text)) + "%"
}

const likeEscape = ` ESCAPE '\'`

func (s *Store) SearchXPLogs(ctx context.Context, q models.SearchQuery) ([]models.XPLog, error) {
	db := scoped(s.DB.WithContext(ctx), q)
	if strings.TrimSpace(q.Text) != "" {
		db = db.Where("reason ILIKE ?"+likeEscape, likeTerm(q.Text))
	}
	var out []models.XPLog
	if err := db.Find(&out).Error; err != nil {
		return nil, internal(err, "xp log search failed")
	}
	return out, nil
}

func (s *Store) SearchCreditTransactions(ctx context.Context, q models.SearchQuery) ([]models.CreditTransaction, error) {
	db := scoped(s.DB.WithContext(ctx), q)
	if strings.TrimSpace(q.Text) != "" {
		db = db.Where("reason ILIKE ?"+likeEscape, likeTerm(q.Text))
	}
	var out []models.CreditTransaction
	if err := db.Find(&out).Error; err != nil {
		return nil, internal(err, "credit transaction search failed")
	}
	return out, nil
}

func (s *Store) SearchBadgeLogs(ctx context.Context, q models.SearchQuery) ([]models.BadgeEarnedLog, error) {
	db := scoped(s.DB.WithContext(ctx), q)
	if strings.TrimSpace(q.Text) != "" {
		term := likeTerm(q.Text)
		db = db.Where("reason ILIKE ?"+likeEscape+" OR badge_id ILIKE ?"+likeEscape, term, term)
	}
	var out []models.BadgeEarnedLog
	if err := db.Find(&out).Error; err != nil {
		return nil, internal(err, "badge search failed")
	}
	return out, nil
}

func (s *Store) SearchSignatures(ctx context.Context, q models.SearchQuery) ([]models.EmotionalSignature, error) {
	db := scoped(s.DB.WithContext(ctx), q)
	if q.Emotion != "" {
		db = db.Where("emotion = ?", q.Emotion)
	}
	if strings.TrimSpace(q.Text) != "" {
		term := likeTerm(q.Text)
		db = db.Where("context ILIKE ?"+likeEscape+" OR emotion ILIKE ?"+likeEscape, term, term)
	}
	var out []models.EmotionalSignature
	if err := db.Find(&out).Error; err != nil {
		return nil, internal(err, "emotional signature search failed")
	}
	return out, nil
}
