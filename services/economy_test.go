package services

import (
	"context"
	"testing"

	"agentgift-service/apperrors"
	"agentgift-service/models"
)

func newEconomy(store *fakeStore) *EconomyService {
	return NewEconomyService(store, NewRewardSettingsService(store, nil))
}

func TestUseFeature_Gates(t *testing.T) {
	tests := []struct {
		name      string
		profile   models.UserProfile
		featureID string
		setup     func(s *fakeStore, userID string)
		wantCode  string
	}{
		{
			name:      "Free user on free feature",
			profile:   models.UserProfile{Tier: models.TierFree, Credits: 10},
			featureID: models.FeatureGiftSuggestion,
		},
		{
			name:      "Tier too low",
			profile:   models.UserProfile{Tier: models.TierPlus, Credits: 10},
			featureID: models.FeatureVoiceAssistant,
			wantCode:  apperrors.ErrCodeForbidden,
		},
		{
			name:      "Banned",
			profile:   models.UserProfile{Tier: models.TierFree, Credits: 10},
			featureID: models.FeatureGiftSuggestion,
			setup: func(s *fakeStore, userID string) {
				_ = s.CreateFeatureBan(context.Background(), &models.FeatureBan{UserID: userID, FeatureID: models.FeatureGiftSuggestion})
			},
			wantCode: apperrors.ErrCodeForbidden,
		},
		{
			name:      "Disabled feature",
			profile:   models.UserProfile{Tier: models.TierAgent, Credits: 10},
			featureID: models.FeatureGiftSuggestion,
			setup: func(s *fakeStore, _ string) {
				r := s.settings[models.FeatureGiftSuggestion]
				r.IsActive = false
				s.settings[models.FeatureGiftSuggestion] = r
			},
			wantCode: apperrors.ErrCodeForbidden,
		},
		{
			name:      "Not enough credits",
			profile:   models.UserProfile{Tier: models.TierPlus, Credits: 4},
			featureID: models.FeatureRevealSession,
			wantCode:  apperrors.ErrCodeInsufficientFunds,
		},
		{
			name:      "Unknown feature",
			profile:   models.UserProfile{Tier: models.TierAgent, Credits: 10},
			featureID: "teleport",
			wantCode:  apperrors.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			user := store.addUser(tt.profile)
			if tt.setup != nil {
				tt.setup(store, user.ID)
			}

			_, err := newEconomy(store).UseFeature(context.Background(), user.ID, tt.featureID)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("UseFeature() error = %v", err)
				}
				return
			}
			if got := apperrors.Code(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err=%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestUseFeature_SpendsAndAwards(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(models.UserProfile{Tier: models.TierPlus, Credits: 12, XP: 90})
	svc := newEconomy(store)

	res, err := svc.UseFeature(context.Background(), user.ID, models.FeatureRevealSession)
	if err != nil {
		t.Fatalf("UseFeature() error = %v", err)
	}
	// 25 XP at 1.5x rounds half up to 38.
	if res.XPAwarded != 38 || res.CreditsSpent != 5 {
		t.Errorf("result = %+v, want 38 XP for 5 credits", res)
	}
	if res.XP != 128 || res.Credits != 7 || res.Level != 2 {
		t.Errorf("balances = %+v", res)
	}
	if len(res.BadgesAwarded) != 1 || res.BadgesAwarded[0] != "xp_100" {
		t.Errorf("BadgesAwarded = %v", res.BadgesAwarded)
	}

	_, err = svc.UseFeature(context.Background(), user.ID, models.FeatureRevealSession)
	if apperrors.Code(err) != apperrors.ErrCodeRateLimited {
		t.Errorf("second use err = %v, want RATE_LIMITED", err)
	}
}

func TestAccess(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(models.UserProfile{Tier: models.TierPlus, Credits: 1})

	access, err := newEconomy(store).Access(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Access() error = %v", err)
	}
	if len(access) != len(models.DefaultRewardSettings) {
		t.Fatalf("len = %d", len(access))
	}

	want := map[string]bool{
		models.FeatureEmotionalCheckin:  true,
		models.FeatureGiftSuggestion:    true,
		models.FeatureMemoryVaultSearch: false,
		models.FeatureRevealSession:     false,
		models.FeatureVoiceAssistant:    false,
	}
	for i, a := range access {
		if i > 0 && access[i-1].FeatureID > a.FeatureID {
			t.Errorf("access not sorted at %d", i)
		}
		if a.Allowed != want[a.FeatureID] {
			t.Errorf("%s allowed = %v, want %v (%s)", a.FeatureID, a.Allowed, want[a.FeatureID], a.Reason)
		}
		if !a.Allowed && a.Reason == "" {
			t.Errorf("%s denied without a reason", a.FeatureID)
		}
	}
}
