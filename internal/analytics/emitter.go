package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Emitter publishes product analytics events. Emission is best-effort: callers
// never fail or roll back because an event could not be delivered.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

type Event struct {
	Name           string         `json:"event"`
	OrganizationID string         `json:"organization_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

type NoOpEmitter struct{}

func (NoOpEmitter) Emit(ctx context.Context, event Event) {}

// WebhookEmitter posts events as JSON to a configured endpoint.
type WebhookEmitter struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewWebhookEmitter(url string, log *zap.Logger) *WebhookEmitter {
	return &WebhookEmitter{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log.Named("analytics"),
	}
}

func (e *WebhookEmitter) Emit(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		e.log.Warn("marshal analytics event", zap.Error(err), zap.String("event", event.Name))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		e.log.Warn("build analytics request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Warn("deliver analytics event", zap.Error(err), zap.String("event", event.Name))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		e.log.Warn("analytics endpoint rejected event",
			zap.String("event", event.Name),
			zap.String("status", fmt.Sprintf("%d", resp.StatusCode)),
		)
	}
}
