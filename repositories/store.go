package repositories

import (
	"errors"

	"agentgift-service/apperrors"
	"agentgift-service/services"

	"gorm.io/gorm"
)

// Store is the gorm-backed implementation of every services store interface.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

var (
	_ services.AdminStore          = (*Store)(nil)
	_ services.RewardSettingsStore = (*Store)(nil)
	_ services.SearchStore         = (*Store)(nil)
	_ services.NominationStore     = (*Store)(nil)
	_ services.RevealStore         = (*Store)(nil)
)

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND AppError and wraps everything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.ErrCodeNotFound, what+" not found")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to load "+what)
}

func internal(err error, msg string) error {
	return apperrors.Wrap(err, apperrors.ErrCodeInternalError, msg)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
