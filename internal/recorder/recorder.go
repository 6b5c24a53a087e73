package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ms-boxoffice/internal/models"
)

// Recorder mirrors issued tickets to an external collaborator. The call is
// strictly best-effort: the workflow dispatches it off the main transition,
// logs a failure and moves on. A returned error never blocks issuance.
type Recorder interface {
	Record(ctx context.Context, payload models.RecordingPayload) error
}

// Noop is the recorder used when no endpoint is configured. That is an
// expected configuration state, not an error.
type Noop struct{}

func (Noop) Record(ctx context.Context, payload models.RecordingPayload) error {
	return nil
}

// Webhook POSTs the payload as JSON to a configured endpoint, typically a
// spreadsheet-backed intake script.
type Webhook struct {
	URL    string
	Client *http.Client
}

func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{URL: url, Client: client}
}

func (w *Webhook) Record(ctx context.Context, payload models.RecordingPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal recording payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build recording request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post recording payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("recording endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
