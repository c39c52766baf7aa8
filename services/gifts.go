package services

import (
	"context"
	"strings"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/gifting"
	"agentgift-service/models"

	"github.com/google/uuid"
)

type FollowThroughInput struct {
	GiftType string `json:"gift_type" validate:"required,max=64"`
	Message  string `json:"message" validate:"max=2000"`
}

type RevealInput struct {
	GiftID      string `json:"gift_id" validate:"required,max=120"`
	RecipientID string `json:"recipient_id" validate:"required,max=120"`
}

type GiftService struct {
	Users   UserStore
	Reveals RevealStore
	Now     func() time.Time
}

func NewGiftService(users UserStore, reveals RevealStore) *GiftService {
	return &GiftService{Users: users, Reveals: reveals, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *GiftService) Suggest(in gifting.SuggestionInput) (*gifting.Suggestion, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	out := gifting.GenerateGiftSuggestion(in)
	return &out, nil
}

// FollowThrough trims the checklist to the caller's tier; unknown users count as free.
func (s *GiftService) FollowThrough(ctx context.Context, userID string, in FollowThroughInput) ([]gifting.FollowThroughStep, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	tier := models.TierFree
	if _, err := uuid.Parse(userID); err == nil {
		if profile, err := s.Users.GetUser(ctx, userID); err == nil {
			tier = profile.Tier
		} else if apperrors.Code(err) != apperrors.ErrCodeNotFound {
			return nil, err
		}
	}
	return gifting.SuggestPhysicalFollowThrough(in.GiftType, in.Message, tier), nil
}

func (s *GiftService) CreateRevealSession(ctx context.Context, createdBy string, in RevealInput) (*models.RevealSession, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.GiftID) == "" || strings.TrimSpace(in.RecipientID) == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "gift_id and recipient_id are required")
	}
	rs := &models.RevealSession{
		SessionKey:  gifting.RevealSessionKey(in.GiftID, in.RecipientID),
		GiftID:      in.GiftID,
		RecipientID: in.RecipientID,
		CreatedBy:   createdBy,
	}
	if err := s.Reveals.CreateRevealSession(ctx, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (s *GiftService) Reveal(ctx context.Context, key string) (*models.RevealSession, error) {
	if key == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "session key is required")
	}
	return s.Reveals.MarkRevealed(ctx, key, s.Now())
}
