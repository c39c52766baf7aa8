// Package forecast holds the economy projections shown on the admin dashboard. The numbers are
// heuristics over recent ledger rows, not models; every function here is pure.
package forecast

import (
	"math"
	"time"

	"agentgift-service/models"
)

const (
	badgeConfidence      = 0.72
	drainConfidence      = 0.65
	drainLowConfidence   = 0.4
	drainWindowDays      = 7
	minActiveDaysForFull = 3
)

type BadgePrediction struct {
	BadgeID          string `json:"badge_id"`
	Name             string `json:"name"`
	PredictedUnlocks int    `json:"predicted_unlocks"`
	Trend            string `json:"trend"`
}

type BadgeForecast struct {
	Horizon    string            `json:"horizon"`
	Confidence float64           `json:"confidence"`
	Badges     []BadgePrediction `json:"badges"`
}

var badgeTable = []BadgePrediction{
	{"first_gift", "First Gift", 412, "up"},
	{"xp_100", "Warm Welcome", 365, "up"},
	{"empathy_engine", "Empathy Engine", 188, "up"},
	{"xp_1000", "Thoughtful Giver", 141, "steady"},
	{"memory_keeper", "Memory Keeper", 97, "steady"},
	{"surprise_architect", "Surprise Architect", 64, "up"},
	{"agent_ally", "Agent Ally", 38, "steady"},
	{"xp_5000", "Gift Whisperer", 27, "down"},
	{"giftbridge_hero", "GiftBridge Hero", 15, "steady"},
	{"xp_25000", "Giftverse Legend", 4, "steady"},
}

// TopBadgeForecast returns the fixed top-ten unlock projection for the coming week.
func TopBadgeForecast() BadgeForecast {
	badges := make([]BadgePrediction, len(badgeTable))
	copy(badges, badgeTable)
	return BadgeForecast{
		Horizon:    "7d",
		Confidence: badgeConfidence,
		Badges:     badges,
	}
}

type DrainForecast struct {
	WindowDays      int              `json:"window_days"`
	TotalSpent      int64            `json:"total_spent"`
	ActiveDays      int              `json:"active_days"`
	AvgDailySpend   float64          `json:"avg_daily_spend"`
	ProjectedWeekly float64          `json:"projected_weekly"`
	ByFeature       map[string]int64 `json:"by_feature"`
	Confidence      float64          `json:"confidence"`
}

// ForecastXPDrain projects next week's credit spend from the trailing seven days. Only
// negative (spending) transactions inside the window count.
func ForecastXPDrain(txns []models.CreditTransaction, now time.Time) DrainForecast {
	windowStart := now.Add(-drainWindowDays * 24 * time.Hour)
	out := DrainForecast{
		WindowDays: drainWindowDays,
		ByFeature:  make(map[string]int64),
	}

	days := make(map[string]struct{})
	for _, t := range txns {
		if t.Amount >= 0 || t.CreatedAt.Before(windowStart) || t.CreatedAt.After(now) {
			continue
		}
		spent := -t.Amount
		out.TotalSpent += spent
		days[t.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}

		feature := "other"
		if t.FeatureID != nil && *t.FeatureID != "" {
			feature = *t.FeatureID
		}
		out.ByFeature[feature] += spent
	}

	out.ActiveDays = len(days)
	out.AvgDailySpend = round2(float64(out.TotalSpent) / drainWindowDays)
	out.ProjectedWeekly = round2(out.AvgDailySpend * drainWindowDays)
	out.Confidence = drainConfidence
	if out.ActiveDays < minActiveDaysForFull {
		out.Confidence = drainLowConfidence
	}
	return out
}

// SettingChange is a proposed reward setting; nil fields keep the current value.
type SettingChange struct {
	BaseXPReward   *int64   `json:"base_xp_reward,omitempty" validate:"omitempty,gte=0"`
	BaseCreditCost *int64   `json:"base_credit_cost,omitempty" validate:"omitempty,gte=0"`
	Multiplier     *float64 `json:"multiplier,omitempty" validate:"omitempty,gt=0,lte=10"`
}

type ImpactTotals struct {
	XPIssued        float64 `json:"xp_issued"`
	CreditsConsumed int64   `json:"credits_consumed"`
}

type ImpactSimulation struct {
	FeatureID       string       `json:"feature_id"`
	WeeklyUses      int64        `json:"weekly_uses"`
	Current         ImpactTotals `json:"current"`
	Proposed        ImpactTotals `json:"proposed"`
	XPDelta         float64      `json:"xp_delta"`
	CreditDelta     int64        `json:"credit_delta"`
	XPChangePct     float64      `json:"xp_change_pct"`
	CreditChangePct float64      `json:"credit_change_pct"`
}

// SimulateImpact compares a week of uses under the current and the proposed setting.
func SimulateImpact(current models.RewardSetting, change SettingChange, weeklyUses int64) ImpactSimulation {
	proposed := current
	if change.BaseXPReward != nil {
		proposed.BaseXPReward = *change.BaseXPReward
	}
	if change.BaseCreditCost != nil {
		proposed.BaseCreditCost = *change.BaseCreditCost
	}
	if change.Multiplier != nil {
		proposed.Multiplier = *change.Multiplier
	}
	if weeklyUses < 0 {
		weeklyUses = 0
	}

	cur := totals(current, weeklyUses)
	next := totals(proposed, weeklyUses)
	return ImpactSimulation{
		FeatureID:       current.FeatureID,
		WeeklyUses:      weeklyUses,
		Current:         cur,
		Proposed:        next,
		XPDelta:         round2(next.XPIssued - cur.XPIssued),
		CreditDelta:     next.CreditsConsumed - cur.CreditsConsumed,
		XPChangePct:     pctChange(cur.XPIssued, next.XPIssued),
		CreditChangePct: pctChange(float64(cur.CreditsConsumed), float64(next.CreditsConsumed)),
	}
}

func totals(s models.RewardSetting, uses int64) ImpactTotals {
	return ImpactTotals{
		XPIssued:        round2(float64(uses) * float64(s.BaseXPReward) * s.Multiplier),
		CreditsConsumed: uses * s.BaseCreditCost,
	}
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		if to == 0 {
			return 0
		}
		return 100
	}
	return round2((to - from) / from * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
