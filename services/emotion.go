package services

import (
	"context"
	"strings"
	"time"

	"agentgift-service/logger"
	"agentgift-service/models"
	"agentgift-service/security"
)

const (
	highConfidence    = 0.85
	checkInConfidence = 0.6

	anomalyMinSignatures = 3
	anomalyMinConfidence = 0.8
)

type SignatureInput struct {
	UserID     string  `json:"user_id" validate:"required,uuid"`
	Emotion    string  `json:"emotion" validate:"required,max=32"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	Context    string  `json:"context" validate:"max=2000"`
	Source     string  `json:"source" validate:"max=32"`
}

// SuggestAction maps an emotion and its confidence to the follow-up the gifting agent should take.
func SuggestAction(emotion string, confidence float64) string {
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	switch {
	case confidence >= highConfidence && models.IsNegativeEmotion(emotion):
		return models.SuggestSendComfortGift
	case confidence >= highConfidence && models.IsPositiveEmotion(emotion):
		return models.SuggestCelebrateMoment
	case confidence >= checkInConfidence:
		return models.SuggestScheduleCheckIn
	default:
		return models.SuggestLogOnly
	}
}

type EmotionService struct {
	Store EmotionStore
	Now   func() time.Time
}

func NewEmotionService(store EmotionStore) *EmotionService {
	return &EmotionService{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

// Ingest stores a signature with its suggested action. Delivery to Make.com happens later.
func (s *EmotionService) Ingest(ctx context.Context, in SignatureInput) (*models.EmotionalSignature, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	emotion := strings.ToLower(strings.TrimSpace(in.Emotion))
	sig := &models.EmotionalSignature{
		UserID:          in.UserID,
		Emotion:         emotion,
		Confidence:      in.Confidence,
		Context:         security.SanitizeText(in.Context, 2000),
		SuggestedAction: SuggestAction(emotion, in.Confidence),
		Source:          in.Source,
	}
	if err := s.Store.CreateSignature(ctx, sig); err != nil {
		return nil, err
	}

	logger.Info("Emotional signature stored", "user_id", sig.UserID, "emotion", sig.Emotion,
		"confidence", sig.Confidence, "suggested_action", sig.SuggestedAction)
	return sig, nil
}

// Anomalies lists users with clustered confident negative signatures in the last hours.
func (s *EmotionService) Anomalies(ctx context.Context, hours int) ([]models.EmotionalAnomaly, error) {
	if hours <= 0 {
		hours = 24
	}
	if hours > 24*30 {
		hours = 24 * 30
	}
	since := s.Now().Add(-time.Duration(hours) * time.Hour)
	out, err := s.Store.DetectAnomalies(ctx, since, anomalyMinSignatures, anomalyMinConfidence)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.EmotionalAnomaly{}
	}
	return out, nil
}
