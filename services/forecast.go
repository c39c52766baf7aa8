package services

import (
	"context"
	"time"

	"agentgift-service/forecast"
)

type SimulationRequest struct {
	FeatureID string `json:"feature_id" validate:"required,max=64"`
	forecast.SettingChange
	// WeeklyUses overrides the observed usage of the last seven days.
	WeeklyUses *int64 `json:"weekly_uses,omitempty" validate:"omitempty,gte=0"`
}

type ForecastService struct {
	Ledger   LedgerStore
	Settings *RewardSettingsService
	Now      func() time.Time
}

func NewForecastService(ledger LedgerStore, settings *RewardSettingsService) *ForecastService {
	return &ForecastService{
		Ledger:   ledger,
		Settings: settings,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ForecastService) TopBadges() forecast.BadgeForecast {
	return forecast.TopBadgeForecast()
}

func (s *ForecastService) XPDrain(ctx context.Context) (*forecast.DrainForecast, error) {
	now := s.Now()
	txns, err := s.Ledger.CreditTransactionsSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	out := forecast.ForecastXPDrain(txns, now)
	return &out, nil
}

func (s *ForecastService) Simulate(ctx context.Context, req SimulationRequest) (*forecast.ImpactSimulation, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	setting, err := s.Settings.Get(ctx, req.FeatureID)
	if err != nil {
		return nil, err
	}

	var uses int64
	if req.WeeklyUses != nil {
		uses = *req.WeeklyUses
	} else {
		uses, err = s.Ledger.CountFeatureUses(ctx, req.FeatureID, s.Now().Add(-7*24*time.Hour))
		if err != nil {
			return nil, err
		}
	}

	out := forecast.SimulateImpact(*setting, req.SettingChange, uses)
	return &out, nil
}
