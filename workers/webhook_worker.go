package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agentgift-service/logger"
	"agentgift-service/models"
)

const (
	maxWebhookAttempts = 5
	webhookBatchSize   = 25
)

// SignatureOutbox is the slice of the emotion store the delivery loop needs.
type SignatureOutbox interface {
	UndeliveredSignatures(ctx context.Context, maxAttempts, limit int) ([]models.EmotionalSignature, error)
	MarkSignatureDelivered(ctx context.Context, id string, at time.Time) error
	IncrementSignatureAttempts(ctx context.Context, id string) error
}

type DeliveryObserver interface {
	ObserveWebhookDelivery(delivered bool)
}

// WebhookPayload is the body Make.com receives for each stored signature.
type WebhookPayload struct {
	SignatureID     string    `json:"signature_id"`
	UserID          string    `json:"user_id"`
	Emotion         string    `json:"emotion"`
	Confidence      float64   `json:"confidence"`
	Context         string    `json:"context,omitempty"`
	SuggestedAction string    `json:"suggested_action"`
	Source          string    `json:"source,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
}

// WebhookWorker forwards undelivered emotional signatures to the Make.com scenario.
type WebhookWorker struct {
	outbox     SignatureOutbox
	url        string
	interval   time.Duration
	httpClient *http.Client
	observer   DeliveryObserver
	now        func() time.Time
}

func NewWebhookWorker(outbox SignatureOutbox, webhookURL string, interval time.Duration, client *http.Client, observer DeliveryObserver) *WebhookWorker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &WebhookWorker{
		outbox:     outbox,
		url:        webhookURL,
		interval:   interval,
		httpClient: client,
		observer:   observer,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (w *WebhookWorker) Start(ctx context.Context) {
	if w.url == "" {
		logger.Warn("MAKE_WEBHOOK_URL not set, webhook worker disabled")
		return
	}
	logger.Info("Starting webhook worker", "interval", w.interval.String())
	go w.run(ctx)
}

func (w *WebhookWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.DeliverBatch(ctx); err != nil {
				logger.Error("Webhook batch failed", "error", err)
			}
		case <-ctx.Done():
			logger.Info("Webhook worker stopped")
			return
		}
	}
}

// DeliverBatch posts one batch of pending signatures and returns how many were delivered.
// A failed POST only bumps the row's attempt counter; rows at the attempt cap are left alone.
func (w *WebhookWorker) DeliverBatch(ctx context.Context) (int, error) {
	pending, err := w.outbox.UndeliveredSignatures(ctx, maxWebhookAttempts, webhookBatchSize)
	if err != nil {
		return 0, fmt.Errorf("load undelivered signatures: %w", err)
	}

	delivered := 0
	for _, sig := range pending {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}

		if err := w.post(ctx, sig); err != nil {
			logger.Warn("Webhook delivery failed", "signature_id", sig.ID, "attempt", sig.WebhookAttempts+1, "error", err)
			if incErr := w.outbox.IncrementSignatureAttempts(ctx, sig.ID); incErr != nil {
				logger.Error("Failed to record webhook attempt", "signature_id", sig.ID, "error", incErr)
			}
			w.observe(false)
			continue
		}

		if err := w.outbox.MarkSignatureDelivered(ctx, sig.ID, w.now()); err != nil {
			logger.Error("Failed to mark signature delivered", "signature_id", sig.ID, "error", err)
			continue
		}
		delivered++
		w.observe(true)
	}

	if delivered > 0 {
		logger.Info("Webhook batch delivered", "delivered", delivered, "pending", len(pending))
	}
	return delivered, nil
}

func (w *WebhookWorker) post(ctx context.Context, sig models.EmotionalSignature) error {
	body, err := json.Marshal(WebhookPayload{
		SignatureID:     sig.ID,
		UserID:          sig.UserID,
		Emotion:         sig.Emotion,
		Confidence:      sig.Confidence,
		Context:         sig.Context,
		SuggestedAction: sig.SuggestedAction,
		Source:          sig.Source,
		DetectedAt:      sig.CreatedAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (w *WebhookWorker) observe(delivered bool) {
	if w.observer != nil {
		w.observer.ObserveWebhookDelivery(delivered)
	}
}
