package services

import (
	"context"
	"time"

	"agentgift-service/models"
)

type UserService struct {
	Store  UserStore
	Badges BadgeStore
}

func NewUserService(store UserStore, badges BadgeStore) *UserService {
	return &UserService{Store: store, Badges: badges}
}

// UserSummary is the admin search row; balances are included, contact details are not.
type UserSummary struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Tier     models.Tier `json:"tier"`
	XP       int64       `json:"xp"`
	Credits  int64       `json:"credits"`
	Level    int         `json:"level"`
	IsAdmin  bool        `json:"is_admin"`
}

// SearchUsers matches username or email, case-insensitively. limit defaults to 50, max 100.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]UserSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	users, err := s.Store.SearchUsers(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{
			ID:       u.ID,
			Username: u.Username,
			Tier:     u.Tier,
			XP:       u.XP,
			Credits:  u.Credits,
			Level:    LevelForXP(u.XP),
			IsAdmin:  u.IsAdmin,
		}
	}
	return res, nil
}

// UserProgress is the caller's own view of their balances and badges.
type UserProgress struct {
	UserID  string                  `json:"user_id"`
	Tier    models.Tier             `json:"tier"`
	XP      int64                   `json:"xp"`
	Credits int64                   `json:"credits"`
	LevelProgress
	Badges []BadgeView `json:"badges"`
}

type BadgeView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Rarity        string    `json:"rarity"`
	AdminAssigned bool      `json:"admin_assigned"`
	AwardedAt     time.Time `json:"awarded_at"`
}

func (s *UserService) Progress(ctx context.Context, userID string) (*UserProgress, error) {
	profile, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.Badges.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &UserProgress{
		UserID:        profile.ID,
		Tier:          profile.Tier,
		XP:            profile.XP,
		Credits:       profile.Credits,
		LevelProgress: ProgressForXP(profile.XP),
		Badges:        make([]BadgeView, 0, len(earned)),
	}
	for _, b := range earned {
		view := BadgeView{ID: b.BadgeID, Name: b.BadgeID, AdminAssigned: b.AdminAssigned, AwardedAt: b.CreatedAt}
		if def, ok := models.FindBadge(b.BadgeID); ok {
			view.Name, view.Rarity = def.Name, def.Rarity
		}
		out.Badges = append(out.Badges, view)
	}
	return out, nil
}
