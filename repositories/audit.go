package repositories

import (
	"context"

	"agentgift-service/models"

	"github.com/google/uuid"
)

func (s *Store) RecordAdminAction(ctx context.Context, entry *models.AdminActionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return internal(err, "failed to write admin action log")
	}
	return nil
}
