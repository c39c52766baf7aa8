package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentgift-service/apperrors"
	"agentgift-service/forecast"
	"agentgift-service/models"

	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
)

type VoiceCommand struct {
	Transcript string `json:"transcript" validate:"max=2000"`
	AdminID    string `json:"admin_id" validate:"required"`
	UserID     string `json:"user_id" validate:"omitempty,uuid"`
}

type VoiceReply struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
	Muted  bool   `json:"muted,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Forecaster interface {
	TopBadges() forecast.BadgeForecast
	XPDrain(ctx context.Context) (*forecast.DrainForecast, error)
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// VoiceRouter maps a transcript to one admin intent by keyword. Each command stands alone.
type VoiceRouter struct {
	Admins     AdminChecker
	Dispatcher ActionDispatcher
	Forecasts  Forecaster
}

func NewVoiceRouter(admins AdminChecker, dispatcher ActionDispatcher, forecasts Forecaster) *VoiceRouter {
	return &VoiceRouter{Admins: admins, Dispatcher: dispatcher, Forecasts: forecasts}
}

type voiceIntent struct {
	name     string
	keywords []string
}

// Checked in order; the first intent with a matching keyword wins.
var voiceIntents = []voiceIntent{
	{"mute", []string{"stop listening", "mute", "silence"}},
	{"balance", []string{"balance", "credits"}},
	{"badge_forecast", []string{"badge"}},
	{"emotional_logs", []string{"emotion", "mood", "feeling"}},
	{"health_report", []string{"health", "report", "export"}},
	{"bonus", []string{"bonus", "reward"}},
	{"xp_drain", []string{"drain", "forecast", "spend"}},
}

// NormalizeTranscript transliterates to ASCII, lowercases and collapses whitespace.
func NormalizeTranscript(transcript string) string {
	return strings.Join(strings.Fields(strings.ToLower(unidecode.Unidecode(transcript))), " ")
}

// ClassifyTranscript returns the intent name for a normalized transcript, or "help".
func ClassifyTranscript(normalized string) string {
	for _, intent := range voiceIntents {
		for _, kw := range intent.keywords {
			if strings.Contains(normalized, kw) {
				return intent.name
			}
		}
	}
	return "help"
}

func (r *VoiceRouter) Route(ctx context.Context, cmd VoiceCommand) (*VoiceReply, error) {
	if err := Validate(cmd); err != nil {
		return nil, err
	}
	text := NormalizeTranscript(cmd.Transcript)
	if text == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "transcript is required")
	}

	intent := ClassifyTranscript(text)
	switch intent {
	case "mute":
		return &VoiceReply{Intent: intent, Reply: "Okay, I'll stay quiet until you need me.", Muted: true}, nil
	case "help":
		return &VoiceReply{Intent: intent, Reply: "You can ask me for a user's balance, badge forecasts, recent moods, a health report, a bonus or the credit drain."}, nil
	}

	if _, err := uuid.Parse(cmd.AdminID); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeForbidden, "admin access required")
	}
	ok, err := r.Admins.IsAdmin(ctx, cmd.AdminID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeForbidden, "admin access required")
	}

	switch intent {
	case "balance":
		return r.balance(ctx, cmd)
	case "badge_forecast":
		f := r.Forecasts.TopBadges()
		reply := "I don't have a badge forecast yet."
		if len(f.Badges) > 0 {
			top := f.Badges[0]
			reply = fmt.Sprintf("%s is the badge most likely to unlock next, about %d times this week.", top.Name, top.PredictedUnlocks)
		}
		return &VoiceReply{Intent: intent, Reply: reply, Data: f}, nil
	case "emotional_logs":
		return r.emotionalLogs(ctx, cmd)
	case "health_report":
		return r.healthReport(ctx, cmd)
	case "bonus":
		return r.bonus(ctx, cmd)
	default:
		drain, err := r.Forecasts.XPDrain(ctx)
		if err != nil {
			return nil, err
		}
		reply := fmt.Sprintf("Credit spend is tracking at about %.0f per week, confidence %.0f percent.", drain.ProjectedWeekly, drain.Confidence*100)
		return &VoiceReply{Intent: intent, Reply: reply, Data: drain}, nil
	}
}

func (r *VoiceRouter) dispatch(ctx context.Context, adminID, action string, params any) (any, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	res, err := r.Dispatcher.Dispatch(ctx, DispatchRequest{Action: action, Parameters: raw, AdminID: adminID})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *VoiceRouter) balance(ctx context.Context, cmd VoiceCommand) (*VoiceReply, error) {
	if cmd.UserID == "" {
		return &VoiceReply{Intent: "balance", Reply: "Which user should I look up?"}, nil
	}
	data, err := r.dispatch(ctx, cmd.AdminID, ActionGetUserBreakdown, payload{"user_id": cmd.UserID})
	if err != nil {
		return nil, err
	}
	reply := "Here's the balance you asked for."
	if b, ok := data.(*UserBreakdown); ok {
		reply = fmt.Sprintf("%s has %d XP at level %d and %d credits.", b.Profile.Username, b.Profile.XP, b.Progress.Level, b.Profile.Credits)
	}
	return &VoiceReply{Intent: "balance", Reply: reply, Data: data}, nil
}

func (r *VoiceRouter) emotionalLogs(ctx context.Context, cmd VoiceCommand) (*VoiceReply, error) {
	params := payload{"limit": 5}
	if cmd.UserID != "" {
		params["user_id"] = cmd.UserID
	}
	data, err := r.dispatch(ctx, cmd.AdminID, ActionGetEmotionalLogs, params)
	if err != nil {
		return nil, err
	}
	reply := "No emotional signals have been logged yet."
	if sigs, ok := data.([]models.EmotionalSignature); ok && len(sigs) > 0 {
		reply = fmt.Sprintf("Here are the last %d emotional signals. The most recent was %s.", len(sigs), sigs[0].Emotion)
	}
	return &VoiceReply{Intent: "emotional_logs", Reply: reply, Data: data}, nil
}

func (r *VoiceRouter) healthReport(ctx context.Context, cmd VoiceCommand) (*VoiceReply, error) {
	data, err := r.dispatch(ctx, cmd.AdminID, ActionExportGiftverseHealth, payload{})
	if err != nil {
		return nil, err
	}
	reply := "The Giftverse health report is ready."
	if h, ok := data.(*HealthExportResult); ok {
		s := h.Snapshot
		reply = fmt.Sprintf("Giftverse health: %d users, %d XP issued and %d credits spent this week.", s.TotalUsers, s.XPIssued7d, s.CreditsSpent7d)
	}
	return &VoiceReply{Intent: "health_report", Reply: reply, Data: data}, nil
}

func (r *VoiceRouter) bonus(ctx context.Context, cmd VoiceCommand) (*VoiceReply, error) {
	if cmd.UserID == "" {
		return &VoiceReply{Intent: "bonus", Reply: "Who should get the bonus?"}, nil
	}
	data, err := r.dispatch(ctx, cmd.AdminID, ActionGrant5XPBonus, payload{"user_id": cmd.UserID})
	if err != nil {
		return nil, err
	}
	reply := "Bonus granted."
	if adj, ok := data.(*XPAdjustment); ok {
		reply = fmt.Sprintf("Done. They now have %d XP.", adj.NewXP)
	}
	return &VoiceReply{Intent: "bonus", Reply: reply, Data: data}, nil
}
