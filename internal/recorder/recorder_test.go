package recorder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/recorder"
)

func samplePayload() models.RecordingPayload {
	return models.RecordingPayload{
		Name:        "Smith Family",
		Email:       "smith@example.com",
		Quantity:    3,
		TicketID:    "DINALI-26-148-A1B2C",
		NumberRange: "146 - 148",
		TotalPrice:  120,
	}
}

func TestWebhookDeliversPayload(t *testing.T) {
	var received models.RecordingPayload
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := recorder.NewWebhook(srv.URL, srv.Client())
	err := wh.Record(context.Background(), samplePayload())

	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "DINALI-26-148-A1B2C", received.TicketID)
	assert.Equal(t, "146 - 148", received.NumberRange)
	assert.Equal(t, float64(120), received.TotalPrice)
	assert.Equal(t, 3, received.Quantity)
}

func TestWebhookReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := recorder.NewWebhook(srv.URL, srv.Client())
	err := wh.Record(context.Background(), samplePayload())

	assert.Error(t, err)
}

func TestWebhookReportsUnreachableEndpoint(t *testing.T) {
	wh := recorder.NewWebhook("http://127.0.0.1:1/record", &http.Client{
		Timeout: 500 * time.Millisecond,
	})

	err := wh.Record(context.Background(), samplePayload())
	assert.Error(t, err)
}

func TestNoopRecorderAlwaysSucceeds(t *testing.T) {
	// No configured endpoint is a valid state, not an error.
	err := recorder.Noop{}.Record(context.Background(), samplePayload())
	assert.NoError(t, err)
}
