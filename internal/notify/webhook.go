package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Webhook posts each DetectedActivity as JSON to a single configured URL.
type Webhook struct {
	url    string
	client *http.Client
	log    *zap.SugaredLogger
}

// NewWebhook builds a Webhook transport. url must be non-empty; callers
// check that before constructing one.
func NewWebhook(url string, log *zap.SugaredLogger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

type webhookPayload struct {
	Callsign    string  `json:"callsign"`
	FrequencyHz uint64  `json:"frequency_hz"`
	Timestamp   string  `json:"timestamp"`
	DurationMs  int64   `json:"duration_ms"`
	Transcript  string  `json:"transcript,omitempty"`
	Method      string  `json:"method,omitempty"`
	Confidence  float64 `json:"confidence"`
}

func (w *Webhook) SendActivity(ctx context.Context, activity DetectedActivity) {
	payload := webhookPayload{
		Callsign:    activity.Callsign,
		FrequencyHz: activity.FrequencyHz,
		Timestamp:   activity.Timestamp.UTC().Format(time.RFC3339),
		DurationMs:  activity.Duration.Milliseconds(),
		Transcript:  activity.Transcript,
		Method:      activity.CallsignMethod,
		Confidence:  activity.Confidence,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		w.log.Errorw("webhook: marshal activity", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		w.log.Errorw("webhook: build request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Warnw("webhook: delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.log.Warnw("webhook: non-2xx response", "status", fmt.Sprint(resp.StatusCode))
	}
}
