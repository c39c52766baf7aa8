package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agentgift-service/apperrors"
	"agentgift-service/middleware"
	"agentgift-service/models"
	"agentgift-service/security"
	"agentgift-service/services"

	"github.com/gofiber/fiber/v2"
)

type stubEmotionStore struct {
	created []models.EmotionalSignature
}

func (s *stubEmotionStore) CreateSignature(_ context.Context, sig *models.EmotionalSignature) error {
	sig.ID = "sig-1"
	s.created = append(s.created, *sig)
	return nil
}

func (s *stubEmotionStore) ListSignatures(context.Context, models.EmotionFilter) ([]models.EmotionalSignature, error) {
	return nil, nil
}

func (s *stubEmotionStore) UndeliveredSignatures(context.Context, int, int) ([]models.EmotionalSignature, error) {
	return nil, nil
}

func (s *stubEmotionStore) MarkSignatureDelivered(context.Context, string, time.Time) error {
	return nil
}

func (s *stubEmotionStore) IncrementSignatureAttempts(context.Context, string) error { return nil }

func (s *stubEmotionStore) DetectAnomalies(context.Context, time.Time, int64, float64) ([]models.EmotionalAnomaly, error) {
	return []models.EmotionalAnomaly{{UserID: "u-1", Signatures: 4, AvgConfidence: 0.9}}, nil
}

const (
	adminUserID  = "3f6a2b1c-9d8e-4f70-a1b2-c3d4e5f60718"
	memberUserID = "5a4b3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d"
)

type stubAdmins map[string]bool

func (s stubAdmins) IsAdmin(_ context.Context, userID string) (bool, error) {
	return s[userID], nil
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("response is not JSON: %s", raw)
		}
	}
	return resp.StatusCode, out
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantDetails bool
	}{
		{"Validation with details", apperrors.Wrap(io.EOF, apperrors.ErrCodeValidation, "bad input"), 400, "bad input", true},
		{"Not found", apperrors.New(apperrors.ErrCodeNotFound, "user not found"), 404, "user not found", false},
		{"Internal keeps details", apperrors.Wrap(io.EOF, apperrors.ErrCodeInternalError, "db down"), 500, "db down", true},
		{"Plain error", io.ErrUnexpectedEOF, 500, "internal error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tt.err) })

			status, body := doJSON(t, app, "GET", "/", "", nil)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if body["error"] != tt.wantMessage {
				t.Errorf("error = %v, want %q", body["error"], tt.wantMessage)
			}
			if _, ok := body["details"]; ok != tt.wantDetails {
				t.Errorf("details present = %v, want %v", ok, tt.wantDetails)
			}
		})
	}
}

func TestGiftRoutes_Suggest(t *testing.T) {
	app := fiber.New()
	SetupGiftRoutes(app, services.NewGiftService(nil, nil))

	status, body := doJSON(t, app, "POST", "/api/gifts/suggest",
		`{"occasion_type":" Birthday ","emotional_state":"HAPPY"}`, nil)
	if status != 200 {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["giftName"] != "Custom Star Map Print" {
		t.Errorf("giftName = %v", body["giftName"])
	}

	status, _ = doJSON(t, app, "POST", "/api/gifts/suggest", `{"occasion_type":"birthday"}`, nil)
	if status != 400 {
		t.Errorf("missing emotional_state: status = %d, want 400", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/gifts/suggest", `{not json`, nil)
	if status != 400 {
		t.Errorf("malformed body: status = %d, want 400", status)
	}
}

func TestGiftRoutes_FollowThroughAnonymous(t *testing.T) {
	app := fiber.New()
	SetupGiftRoutes(app, services.NewGiftService(nil, nil))

	status, body := doJSON(t, app, "POST", "/api/gifts/follow-through", `{"gift_type":"unknown"}`, nil)
	if status != 200 {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	steps, ok := body["steps"].([]any)
	if !ok || len(steps) != 0 {
		t.Errorf("steps = %v, want empty array", body["steps"])
	}
}

type stubReveals map[string]*models.RevealSession

func (s stubReveals) CreateRevealSession(_ context.Context, rs *models.RevealSession) error {
	s[rs.SessionKey] = rs
	return nil
}

func (s stubReveals) MarkRevealed(_ context.Context, key string, at time.Time) (*models.RevealSession, error) {
	rs, ok := s[key]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "reveal session not found")
	}
	rs.RevealedAt = &at
	return rs, nil
}

func TestGiftRoutes_RevealEncodedKey(t *testing.T) {
	reveals := stubReveals{}
	app := fiber.New()
	SetupGiftRoutes(app, services.NewGiftService(nil, reveals))

	status, body := doJSON(t, app, "POST", "/api/reveal/sessions", `{"gift_id":"gift 1","recipient_id":"ana&bo"}`, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("create: status = %d, body = %v", status, body)
	}
	if body["session_key"] != "gift 1-ana&bo" {
		t.Fatalf("session_key = %v", body["session_key"])
	}
	if status, body := doJSON(t, app, "POST", "/api/reveal/sessions", `{"gift_id":"100%","recipient_id":"off"}`, nil); status != fiber.StatusCreated {
		t.Fatalf("create: status = %d, body = %v", status, body)
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"Encoded key", "/api/reveal/sessions/gift%201-ana%26bo/reveal", fiber.StatusOK},
		{"Unknown key", "/api/reveal/sessions/gift%202-ana%26bo/reveal", fiber.StatusNotFound},
		{"Encoded percent", "/api/reveal/sessions/100%25-off/reveal", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, "POST", tt.path, "", nil)
			if status != tt.want {
				t.Errorf("status = %d, want %d (body %v)", status, tt.want, body)
			}
		})
	}
	if reveals["gift 1-ana&bo"].RevealedAt == nil {
		t.Error("session was not marked revealed")
	}
}

func TestAnnouncementRoutes_StreamToken(t *testing.T) {
	tokens := security.TokenIssuer{Secret: "this_is_a_test_secret_key_with_32_chars_minimum"}
	app := fiber.New()
	app.Use(middleware.UserContextMiddleware())
	SetupAnnouncementRoutes(app, services.NewAnnouncementService(nil, nil), tokens, nil)

	status, _ := doJSON(t, app, "POST", "/s/announcements/stream-token", "", nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("no user: status = %d, want 401", status)
	}

	status, body := doJSON(t, app, "POST", "/s/announcements/stream-token", "",
		map[string]string{"X-User-ID": memberUserID, "X-User-Roles": "member"})
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	token, _ := body["token"].(string)
	claims, err := security.ValidateJWT(token, tokens.Secret)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != memberUserID || len(claims.Roles) != 1 || claims.Roles[0] != "member" {
		t.Errorf("claims = %+v", claims)
	}
	if ttl := time.Until(claims.ExpiresAt.Time); ttl <= 0 || ttl > streamTokenTTL {
		t.Errorf("token ttl = %v, want within %v", ttl, streamTokenTTL)
	}
}

func TestEmotionRoutes(t *testing.T) {
	store := &stubEmotionStore{}
	app := fiber.New()
	app.Use(middleware.UserContextMiddleware())
	adminOnly := middleware.AdminMiddleware(stubAdmins{adminUserID: true})
	SetupEmotionRoutes(app, adminOnly, services.NewEmotionService(store))

	status, body := doJSON(t, app, "POST", "/api/webhooks/emotional-signature",
		`{"user_id":"6f1c1c2e-8f0e-4c55-9d7b-1f1b7c0f2a11","emotion":"Sad","confidence":0.9}`, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["suggested_action"] != models.SuggestSendComfortGift {
		t.Errorf("suggested_action = %v", body["suggested_action"])
	}
	if len(store.created) != 1 || store.created[0].Emotion != "sad" {
		t.Errorf("stored = %+v", store.created)
	}

	status, _ = doJSON(t, app, "POST", "/api/webhooks/emotional-signature",
		`{"user_id":"nope","emotion":"sad","confidence":0.9}`, nil)
	if status != 400 {
		t.Errorf("bad user_id: status = %d, want 400", status)
	}

	status, _ = doJSON(t, app, "GET", "/s/admin/emotions/anomalies", "", map[string]string{"X-User-ID": memberUserID})
	if status != 403 {
		t.Errorf("non-admin anomalies: status = %d, want 403", status)
	}

	status, body = doJSON(t, app, "GET", "/s/admin/emotions/anomalies?hours=6", "", map[string]string{"X-User-ID": adminUserID})
	if status != 200 {
		t.Fatalf("admin anomalies: status = %d", status)
	}
	if body["hours"] != float64(6) {
		t.Errorf("hours = %v, want 6", body["hours"])
	}
	if list, _ := body["anomalies"].([]any); len(list) != 1 {
		t.Errorf("anomalies = %v", body["anomalies"])
	}
}

func TestNominationRoutes_AdminGate(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.UserContextMiddleware())
	SetupNominationRoutes(app, middleware.AdminMiddleware(stubAdmins{}), services.NewNominationService(nil))

	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"No user", "", fiber.StatusUnauthorized},
		{"Non-admin", memberUserID, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.userID != "" {
				headers["X-User-ID"] = tt.userID
			}
			status, _ := doJSON(t, app, "POST", "/s/admin/giftbridge/nominations/abc/approve", "", headers)
			if status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
		})
	}
}

func TestHealthRoutes(t *testing.T) {
	tests := []struct {
		name string
		ping func() error
		want int
	}{
		{"No ping", nil, 200},
		{"Healthy", func() error { return nil }, 200},
		{"Database down", func() error { return io.ErrClosedPipe }, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			SetupHealthRoutes(app, tt.ping)
			if status, _ := doJSON(t, app, "GET", "/healthz", "", nil); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
		})
	}
}
