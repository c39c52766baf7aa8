package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/models"
)

func TestClassifyTranscript(t *testing.T) {
	tests := []struct {
		transcript string
		want       string
	}{
		{"Stop listening please", "mute"},
		{"What's the credit balance for Maya?", "balance"},
		{"Which badge unlocks next", "badge_forecast"},
		{"Show me recent moods", "emotional_logs"},
		{"Export the health report", "health_report"},
		{"Give her a bonus", "bonus"},
		{"Forecast the drain", "xp_drain"},
		{"  ÉMOTION   check ", "emotional_logs"},
		{"tell me a joke", "help"},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			if got := ClassifyTranscript(NormalizeTranscript(tt.transcript)); got != tt.want {
				t.Errorf("ClassifyTranscript(%q) = %q, want %q", tt.transcript, got, tt.want)
			}
		})
	}
}

func newVoiceFixture(t *testing.T) (*VoiceRouter, *dispatcherFixture) {
	t.Helper()
	f := newDispatcherFixture(t)
	forecasts := NewForecastService(f.store, NewRewardSettingsService(f.store, nil))
	return NewVoiceRouter(f.store, f.d, forecasts), f
}

func TestVoiceRoute(t *testing.T) {
	router, f := newVoiceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		cmd        VoiceCommand
		wantIntent string
		wantReply  string
		wantCode   string
	}{
		{"Mute skips admin check", VoiceCommand{Transcript: "mute", AdminID: "anyone"}, "mute", "quiet", ""},
		{"Help skips admin check", VoiceCommand{Transcript: "sing", AdminID: "anyone"}, "help", "You can ask me", ""},
		{"Empty transcript", VoiceCommand{Transcript: "   ", AdminID: f.admin.ID}, "", "", apperrors.ErrCodeValidation},
		{"Non-admin", VoiceCommand{Transcript: "balance", AdminID: f.user.ID}, "", "", apperrors.ErrCodeForbidden},
		{"Malformed admin id", VoiceCommand{Transcript: "balance", AdminID: "bob"}, "", "", apperrors.ErrCodeForbidden},
		{"Balance asks for a user", VoiceCommand{Transcript: "balance", AdminID: f.admin.ID}, "balance", "Which user", ""},
		{"Balance", VoiceCommand{Transcript: "balance", AdminID: f.admin.ID, UserID: f.user.ID}, "balance", "maya has 50 XP at level 1 and 20 credits.", ""},
		{"Badge forecast", VoiceCommand{Transcript: "badge", AdminID: f.admin.ID}, "badge_forecast", "First Gift", ""},
		{"Health", VoiceCommand{Transcript: "health", AdminID: f.admin.ID}, "health_report", "2 users", ""},
		{"Drain", VoiceCommand{Transcript: "drain", AdminID: f.admin.ID}, "xp_drain", "per week", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := router.Route(ctx, tt.cmd)
			if tt.wantCode != "" {
				if got := apperrors.Code(err); got != tt.wantCode {
					t.Errorf("code = %s, want %s (err=%v)", got, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if reply.Intent != tt.wantIntent {
				t.Errorf("Intent = %q, want %q", reply.Intent, tt.wantIntent)
			}
			if !strings.Contains(reply.Reply, tt.wantReply) {
				t.Errorf("Reply = %q, want it to contain %q", reply.Reply, tt.wantReply)
			}
		})
	}
}

func TestVoiceBonusGoesThroughDispatcher(t *testing.T) {
	router, f := newVoiceFixture(t)

	reply, err := router.Route(context.Background(), VoiceCommand{Transcript: "Give Maya a bonus", AdminID: f.admin.ID, UserID: f.user.ID})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if reply.Reply != "Done. They now have 55 XP." {
		t.Errorf("Reply = %q", reply.Reply)
	}
	if len(f.store.audit) != 1 || f.store.audit[0].ActionType != ActionGrant5XPBonus {
		t.Errorf("audit = %+v", f.store.audit)
	}
}

func TestVoiceEmotionalLogs(t *testing.T) {
	router, f := newVoiceFixture(t)
	_ = f.store.CreateSignature(context.Background(), &models.EmotionalSignature{
		UserID: f.user.ID, Emotion: "grateful", Confidence: 0.9, CreatedAt: time.Now().UTC(),
	})

	reply, err := router.Route(context.Background(), VoiceCommand{Transcript: "how is everyone feeling", AdminID: f.admin.ID})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !strings.Contains(reply.Reply, "The most recent was grateful") {
		t.Errorf("Reply = %q", reply.Reply)
	}
}
