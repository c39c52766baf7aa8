package services

import (
	"context"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/logger"
	"agentgift-service/models"
	"agentgift-service/security"

	"github.com/google/uuid"
)

type NominationInput struct {
	NomineeUserID string `json:"nominee_user_id" validate:"required,uuid"`
	Reason        string `json:"reason" validate:"required,max=2000"`
}

type NominationService struct {
	Store NominationStore
	Now   func() time.Time
}

func NewNominationService(store NominationStore) *NominationService {
	return &NominationService{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *NominationService) Nominate(ctx context.Context, nominatorID string, in NominationInput) (*models.Nomination, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	if in.NomineeUserID == nominatorID {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "you cannot nominate yourself")
	}
	reason := security.SanitizeText(in.Reason, 2000)
	if reason == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "reason must contain text")
	}

	n := &models.Nomination{
		NomineeUserID:   in.NomineeUserID,
		NominatorUserID: nominatorID,
		Reason:          reason,
		Status:          models.NominationPending,
	}
	if err := s.Store.CreateNomination(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NominationService) List(ctx context.Context, status string, limit int) ([]models.Nomination, error) {
	st := models.NominationStatus(status)
	switch st {
	case "", models.NominationPending, models.NominationApproved, models.NominationRejected:
	default:
		return nil, apperrors.New(apperrors.ErrCodeValidation, "status must be pending, approved or rejected")
	}
	out, err := s.Store.ListNominations(ctx, st, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Nomination{}
	}
	return out, nil
}

func (s *NominationService) Approve(ctx context.Context, id, reviewerID string) (*models.Nomination, error) {
	return s.review(ctx, id, models.NominationApproved, reviewerID)
}

// Reject moves a pending nomination to rejected.
func (s *NominationService) Reject(ctx context.Context, id, reviewerID string) (*models.Nomination, error) {
	return s.review(ctx, id, models.NominationRejected, reviewerID)
}

func (s *NominationService) review(ctx context.Context, id string, status models.NominationStatus, reviewerID string) (*models.Nomination, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "invalid nomination id")
	}
	n, err := s.Store.ReviewNomination(ctx, id, status, reviewerID, s.Now())
	if err != nil {
		return nil, err
	}
	logger.Info("Nomination reviewed", "nomination_id", id, "status", status, "reviewer", reviewerID)
	return n, nil
}
