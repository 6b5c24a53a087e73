package booking_api_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-boxoffice/internal/booking/booking_api"
	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/ledger"
	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/persistence"
	"ms-boxoffice/internal/store"
	"ms-boxoffice/internal/utils"
	"ms-boxoffice/internal/workflow"
)

var testEvent = config.EventConfig{
	Code:             "DINALI-26",
	Title:            "Dinali 2026",
	Date:             "Saturday 27th June 2026",
	Time:             "6.00pm",
	Venue:            "Pioneer Theatre, Castle Hill",
	UnitPrice:        40,
	PlaceholderGuest: "VIP Guest",
}

func newTestRouter(t *testing.T, max, sold int) (*chi.Mux, *workflow.Workflow) {
	t.Helper()

	wf := workflow.New(
		ledger.New(max, sold),
		store.New(nil),
		persistence.NewMemory(),
		nil,
		testEvent,
		0, // no review delay in tests
		nil,
	)
	h := booking_api.NewHandler(wf, nil, testEvent, nil)

	r := chi.NewRouter()
	r.Get("/api/event", h.GetEvent)
	r.Route("/api/booking", func(r chi.Router) {
		r.Get("/", h.GetBookingState)
		r.Post("/", h.SubmitBooking)
		r.Post("/approve", h.ApproveBooking)
		r.Post("/reset", h.ResetBooking)
	})
	r.Route("/api/tickets/{ticketID}", func(r chi.Router) {
		r.Get("/", h.ViewTicket)
		r.Get("/qr", h.TicketQR)
	})
	return r, wf
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetEventReturnsCapacityView(t *testing.T) {
	r, _ := newTestRouter(t, 372, 145)

	rec := doJSON(t, r, http.MethodGet, "/api/event", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	view := resp.Data.(map[string]interface{})
	assert.Equal(t, "Dinali 2026", view["title"])
	assert.Equal(t, float64(372), view["max"])
	assert.Equal(t, float64(145), view["sold"])
	assert.Equal(t, float64(227), view["remaining"])
	assert.Equal(t, float64(38), view["percent_sold"])
}

func TestGetEventPercentFullWhenMaxZero(t *testing.T) {
	r, _ := newTestRouter(t, 0, 0)

	rec := doJSON(t, r, http.MethodGet, "/api/event", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.Equal(t, float64(100), view["percent_sold"])
}

func TestSubmitThenApproveIssuesTicket(t *testing.T) {
	r, wf := newTestRouter(t, 372, 145)

	rec := doJSON(t, r, http.MethodPost, "/api/booking", models.BookingRequest{
		GuestName: "Smith Family",
		Email:     "smith@example.com",
		Quantity:  3,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.Equal(t, string(workflow.StatePendingApproval), data["state"])

	// Capacity is not held while pending
	assert.Equal(t, 145, wf.Capacity().Sold)

	rec = doJSON(t, r, http.MethodPost, "/api/booking/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ticket := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "146 - 148", ticket["number_range"])
	assert.Equal(t, "Smith Family", ticket["guest_name"])
	assert.Equal(t, float64(120), ticket["total_price"])
	assert.True(t, strings.HasPrefix(ticket["id"].(string), "DINALI-26-148-"))

	assert.Equal(t, 148, wf.Capacity().Sold)
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t, 372, 145)

	req := httptest.NewRequest(http.MethodPost, "/api/booking", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRejectsMissingGuestName(t *testing.T) {
	r, _ := newTestRouter(t, 372, 145)

	rec := doJSON(t, r, http.MethodPost, "/api/booking", models.BookingRequest{Quantity: 2})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestSubmitRejectsWhenSoldOut(t *testing.T) {
	r, _ := newTestRouter(t, 10, 10)

	rec := doJSON(t, r, http.MethodPost, "/api/booking", models.BookingRequest{
		GuestName: "Late Guest",
		Quantity:  1,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApproveWithoutPendingRequestConflicts(t *testing.T) {
	r, _ := newTestRouter(t, 372, 145)

	rec := doJSON(t, r, http.MethodPost, "/api/booking/approve", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSecondSubmitWhilePendingConflicts(t *testing.T) {
	r, _ := newTestRouter(t, 372, 145)

	rec := doJSON(t, r, http.MethodPost, "/api/booking", models.BookingRequest{
		GuestName: "First Guest",
		Quantity:  1,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/booking", models.BookingRequest{
		GuestName: "Second Guest",
		Quantity:  1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResetReturnsToIdle(t *testing.T) {
	r, wf := newTestRouter(t, 372, 145)

	rec := doJSON(t, r, http.MethodPost, "/api/booking", models.BookingRequest{
		GuestName: "Hesitant Guest",
		Quantity:  2,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/booking/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, workflow.StateIdle, wf.State())
	assert.Equal(t, 145, wf.Capacity().Sold)
}

func TestGetBookingStateIncludesTicketWhenIssued(t *testing.T) {
	r, wf := newTestRouter(t, 372, 145)

	_, ticket, err := wf.Submit(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		models.BookingRequest{GuestName: "Direct Guest", Quantity: 1}, true)
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodGet, "/api/booking", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.Equal(t, string(workflow.StateIssued), data["state"])
	assert.Equal(t, ticket.ID, data["ticket"].(map[string]interface{})["id"])
}

func TestViewTicketNotFound(t *testing.T) {
	r, _ := newTestRouter(t, 372, 145)

	rec := doJSON(t, r, http.MethodGet, "/api/tickets/DINALI-26-999-ZZZZZ", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewTicketReplaysIssuedTicket(t *testing.T) {
	r, wf := newTestRouter(t, 372, 145)

	_, ticket, err := wf.Submit(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		models.BookingRequest{GuestName: "Returning Guest", Quantity: 2}, true)
	require.NoError(t, err)
	soldAfterIssue := wf.Capacity().Sold

	rec := doJSON(t, r, http.MethodGet, "/api/tickets/"+ticket.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeResponse(t, rec).Data.(map[string]interface{})
	assert.Equal(t, ticket.ID, view["id"])
	// Replaying a ticket never allocates
	assert.Equal(t, soldAfterIssue, wf.Capacity().Sold)
}

func TestTicketQRServesDecodablePNG(t *testing.T) {
	r, wf := newTestRouter(t, 372, 145)

	_, ticket, err := wf.Submit(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		models.BookingRequest{GuestName: "QR Guest", Quantity: 1}, true)
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodGet, "/api/tickets/"+ticket.ID+"/qr", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}
