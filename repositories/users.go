package repositories

import (
	"context"
	"strings"

	"agentgift-service/models"
)

func (s *Store) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &profile, nil
}

// IsAdmin is the single row lookup behind every admin route. Unknown users are not admins.
func (s *Store) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ? AND is_admin = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return false, internal(err, "failed to check admin flag")
	}
	return count > 0, nil
}

func (s *Store) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserProfile, error) {
	db := s.DB.WithContext(ctx).
		Model(&models.UserProfile{}).
		Order("username ASC").
		Limit(clampLimit(limit, 50, 100))

	if q := strings.TrimSpace(query); q != "" {
		term := likeTerm(strings.ToLower(q))
		db = db.Where("LOWER(username) LIKE ?"+likeEscape+" OR LOWER(email) LIKE ?"+likeEscape, term, term)
	}

	var users []models.UserProfile
	if err := db.Find(&users).Error; err != nil {
		return nil, internal(err, "user search failed")
	}
	return users, nil
}
