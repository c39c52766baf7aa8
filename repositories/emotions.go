package repositories

import (
	"context"
	"time"

	"agentgift-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateSignature(ctx context.Context, sig *models.EmotionalSignature) error {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(sig).Error; err != nil {
		return internal(err, "failed to store emotional signature")
	}
	return nil
}

func (s *Store) ListSignatures(ctx context.Context, filter models.EmotionFilter) ([]models.EmotionalSignature, error) {
	db := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(filter.Limit, 20, 200))
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Emotion != "" {
		db = db.Where("emotion = ?", filter.Emotion)
	}
	if !filter.Since.IsZero() {
		db = db.Where("created_at >= ?", filter.Since)
	}

	var sigs []models.EmotionalSignature
	if err := db.Find(&sigs).Error; err != nil {
		return nil, internal(err, "failed to load emotional signatures")
	}
	return sigs, nil
}

func (s *Store) UndeliveredSignatures(ctx context.Context, maxAttempts, limit int) ([]models.EmotionalSignature, error) {
	var sigs []models.EmotionalSignature
	err := s.DB.WithContext(ctx).
		Where("webhook_delivered_at IS NULL AND webhook_attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(clampLimit(limit, 50, 500)).
		Find(&sigs).Error
	if err != nil {
		return nil, internal(err, "failed to load undelivered signatures")
	}
	return sigs, nil
}

func (s *Store) MarkSignatureDelivered(ctx context.Context, id string, at time.Time) error {
	err := s.DB.WithContext(ctx).
		Model(&models.EmotionalSignature{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"webhook_delivered_at": at,
			"webhook_attempts":     gorm.Expr("webhook_attempts + 1"),
		}).Error
	if err != nil {
		return internal(err, "failed to mark signature delivered")
	}
	return nil
}

func (s *Store) IncrementSignatureAttempts(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).
		Model(&models.EmotionalSignature{}).
		Where("id = ?", id).
		Update("webhook_attempts", gorm.Expr("webhook_attempts + 1")).Error
	if err != nil {
		return internal(err, "failed to record webhook attempt")
	}
	return nil
}

// DetectAnomalies groups recent confident negative signatures per user.
func (s *Store) DetectAnomalies(ctx context.Context, since time.Time, minCount int64, minConfidence float64) ([]models.EmotionalAnomaly, error) {
	var rows []models.EmotionalAnomaly
	err := s.DB.WithContext(ctx).Raw(`
		SELECT user_id,
		       COUNT(*)        AS signatures,
		       AVG(confidence) AS avg_confidence,
		       MAX(created_at) AS last_seen
		FROM emotional_signatures
		WHERE created_at >= ? AND confidence >= ? AND emotion IN ?
		GROUP BY user_id
		HAVING COUNT(*) >= ?
		ORDER BY signatures DESC, last_seen DESC`,
		since, minConfidence, models.NegativeEmotions(), minCount,
	).Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "anomaly detection failed")
	}
	return rows, nil
}
