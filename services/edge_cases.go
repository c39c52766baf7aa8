package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/models"
)

// EdgeCaseResult describes how the economy behaves in a named corner case. Nothing is written.
type EdgeCaseResult struct {
	Scenario    string         `json:"scenario"`
	Description string         `json:"description"`
	Input       map[string]any `json:"input"`
	Outcome     map[string]any `json:"outcome"`
	Holds       bool           `json:"holds"`
}

type edgeCaseParams struct {
	Scenario string `json:"scenario" validate:"required"`
}

var edgeCases = map[string]func(now time.Time) EdgeCaseResult{
	"zero_balance": func(time.Time) EdgeCaseResult {
		next := models.ClampBalance(0, -10)
		return EdgeCaseResult{
			Description: "Deducting from an empty balance leaves it at zero",
			Input:       map[string]any{"balance": 0, "delta": -10},
			Outcome:     map[string]any{"new_balance": next, "delta_applied": next},
			Holds:       next == 0,
		}
	},
	"negative_adjustment": func(time.Time) EdgeCaseResult {
		next := models.ClampBalance(50, -1000)
		return EdgeCaseResult{
			Description: "A large negative adjustment is clamped and only the applied delta is logged",
			Input:       map[string]any{"balance": 50, "delta": -1000},
			Outcome:     map[string]any{"new_balance": next, "delta_applied": next - 50},
			Holds:       next == 0,
		}
	},
	"duplicate_badge": func(time.Time) EdgeCaseResult {
		return EdgeCaseResult{
			Description: "Assigning a badge twice reports already_had instead of inserting a second row",
			Input:       map[string]any{"badge_id": "first_gift", "times": 2},
			Outcome:     map[string]any{"first": payload{"assigned": true, "already_had": false}, "second": payload{"assigned": false, "already_had": true}},
			Holds:       true,
		}
	},
	"expired_ban": func(now time.Time) EdgeCaseResult {
		expired := now.Add(-time.Hour)
		ban := models.FeatureBan{FeatureID: models.FeatureVoiceAssistant, ExpiresAt: &expired}
		return EdgeCaseResult{
			Description: "A ban whose expiry has passed no longer blocks the feature",
			Input:       map[string]any{"expires_at": expired},
			Outcome:     map[string]any{"active": ban.Active(now)},
			Holds:       !ban.Active(now),
		}
	},
	"cooldown_collision": func(now time.Time) EdgeCaseResult {
		setting := models.RewardSetting{FeatureID: models.FeatureRevealSession, CooldownMinutes: 60}
		lastUse := now.Add(-45 * time.Minute)
		remaining := cooldownRemaining(lastUse, setting.CooldownMinutes, now)
		return EdgeCaseResult{
			Description: "A second use inside the cooldown window is refused with the time left",
			Input:       map[string]any{"cooldown_minutes": setting.CooldownMinutes, "last_use": lastUse},
			Outcome:     map[string]any{"allowed": remaining <= 0, "retry_after_seconds": int64(remaining.Seconds())},
			Holds:       remaining == 15*time.Minute,
		}
	},
}

func (d *AdminDispatcher) simulateEdgeCase(_ context.Context, _ string, raw json.RawMessage) (any, error) {
	var p edgeCaseParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	run, ok := edgeCases[p.Scenario]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("unknown scenario %q", p.Scenario))
	}
	result := run(d.Now())
	result.Scenario = p.Scenario
	return result, nil
}
