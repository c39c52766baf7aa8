package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateNomination(ctx context.Context, n *models.Nomination) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return internal(err, "failed to create nomination")
	}
	return nil
}

func (s *Store) ListNominations(ctx context.Context, status models.NominationStatus, limit int) ([]models.Nomination, error) {
	db := s.DB.WithContext(ctx).Order("created_at DESC").Limit(clampLimit(limit, 50, 200))
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var out []models.Nomination
	if err := db.Find(&out).Error; err != nil {
		return nil, internal(err, "failed to load nominations")
	}
	return out, nil
}

// ReviewNomination is a conditional update on status = pending, so two reviewers cannot both win.
func (s *Store) ReviewNomination(ctx context.Context, id string, status models.NominationStatus, reviewer string, at time.Time) (*models.Nomination, error) {
	var out models.Nomination
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Nomination{}).
			Where("id = ? AND status = ?", id, models.NominationPending).
			Updates(map[string]interface{}{
				"status":      status,
				"reviewed_by": reviewer,
				"reviewed_at": at,
			})
		if result.Error != nil {
			return internal(result.Error, "failed to review nomination")
		}

		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return notFound(err, "nomination")
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.ErrCodeConflict, "nomination already "+string(out.Status))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) CreateRevealSession(ctx context.Context, rs *models.RevealSession) error {
	if rs.ID == "" {
		rs.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(rs).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return apperrors.New(apperrors.ErrCodeAlreadyExists, "reveal session already exists")
		}
		return internal(err, "failed to create reveal session")
	}
	return nil
}

// MarkRevealed stamps revealed_at once; a second reveal returns CONFLICT.
func (s *Store) MarkRevealed(ctx context.Context, key string, at time.Time) (*models.RevealSession, error) {
	var out models.RevealSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RevealSession{}).
			Where("session_key = ? AND revealed_at IS NULL", key).
			Update("revealed_at", at)
		if result.Error != nil {
			return internal(result.Error, "failed to reveal session")
		}
		if err := tx.Where("session_key = ?", key).First(&out).Error; err != nil {
			return notFound(err, "reveal session")
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.ErrCodeConflict, "session already revealed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
