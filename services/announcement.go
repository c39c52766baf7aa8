package services

import (
	"context"
	"time"

	"agentgift-service/models"
)

const announcementWindow = 30 * 24 * time.Hour

type AnnouncementService struct {
	Store        AnnouncementStore
	Users        UserStore
	PollInterval time.Duration
}

func NewAnnouncementService(store AnnouncementStore, users UserStore) *AnnouncementService {
	return &AnnouncementService{Store: store, Users: users, PollInterval: 2 * time.Second}
}

// ListForUser returns the latest announcements visible to the user's tier, newest first.
func (s *AnnouncementService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Announcement, error) {
	profile, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Store.ListAnnouncementsForTier(ctx, profile.Tier, time.Now().UTC().Add(-announcementWindow), limit)
}

// visibleSince is one SSE poll: announcements after cursor that tier may see, and the new cursor.
func (s *AnnouncementService) visibleSince(ctx context.Context, tier models.Tier, cursor time.Time) ([]models.Announcement, time.Time, error) {
	rows, err := s.Store.ListAnnouncements(ctx, cursor, 100)
	if err != nil {
		return nil, cursor, err
	}
	var out []models.Announcement
	for _, a := range rows {
		if a.CreatedAt.After(cursor) {
			cursor = a.CreatedAt
		}
		if a.VisibleTo(tier) {
			out = append(out, a)
		}
	}
	return out, cursor, nil
}
