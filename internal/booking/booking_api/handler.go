package booking_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/ledger"
	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/passes"
	"ms-boxoffice/internal/store"
	"ms-boxoffice/internal/utils"
	"ms-boxoffice/internal/workflow"
)

// Handler serves the public booking surface: event info, the booking state
// machine, and the ticket display endpoints.
type Handler struct {
	Workflow *workflow.Workflow
	Exporter *passes.PDFExporter
	Event    config.EventConfig
	Logger   *logger.Logger
}

func NewHandler(wf *workflow.Workflow, exporter *passes.PDFExporter, event config.EventConfig, log *logger.Logger) *Handler {
	return &Handler{
		Workflow: wf,
		Exporter: exporter,
		Event:    event,
		Logger:   log,
	}
}

type eventView struct {
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Venue     string  `json:"venue"`
	UnitPrice float64 `json:"unit_price"`
	Max       int     `json:"max"`
	Sold      int     `json:"sold"`
	Remaining int     `json:"remaining"`
	// PercentSold backs the capacity progress bar; 100 when max is zero.
	PercentSold int `json:"percent_sold"`
}

// GetEvent returns the static event metadata plus the live capacity view.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	capacity := h.Workflow.Capacity()

	percent := 100
	if capacity.Max > 0 {
		percent = capacity.Sold * 100 / capacity.Max
		if percent > 100 {
			percent = 100
		}
	}

	view := eventView{
		Title:       h.Event.Title,
		Date:        h.Event.Date,
		Time:        h.Event.Time,
		Venue:       h.Event.Venue,
		UnitPrice:   h.Event.UnitPrice,
		Max:         capacity.Max,
		Sold:        capacity.Sold,
		Remaining:   h.Workflow.Remaining(),
		PercentSold: percent,
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("event", view))
}

// SubmitBooking lodges a guest request. Validation and capacity failures are
// user-correctable: the state machine stays where it was.
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	state, _, err := h.Workflow.Submit(r.Context(), req, false)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, utils.SuccessResponse("request lodged", map[string]interface{}{
		"state": state,
	}))
}

// ApproveBooking clears the pending request and materializes its ticket.
func (h *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Workflow.Approve(r.Context())
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	if h.Logger != nil {
		h.Logger.LogAllocation("APPROVED", ticket.ID, fmt.Sprintf("%d pass(es) for %s", ticket.Quantity, ticket.GuestName))
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket issued", ticket))
}

// ResetBooking abandons the in-flight request (or clears an issued view)
// and returns to Idle. Capacity and history are untouched.
func (h *Handler) ResetBooking(w http.ResponseWriter, r *http.Request) {
	h.Workflow.Reset()
	writeJSON(w, http.StatusOK, utils.SuccessResponse("reset", map[string]interface{}{
		"state": workflow.StateIdle,
	}))
}

// GetBookingState reports where the in-flight request is, plus the ticket
// being displayed when one is.
func (h *Handler) GetBookingState(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"state": h.Workflow.State(),
	}
	if ticket := h.Workflow.CurrentTicket(); ticket != nil {
		data["ticket"] = ticket
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("booking state", data))
}

// ViewTicket replays a previously issued ticket. Read-only: no capacity is
// allocated.
func (h *Handler) ViewTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.Workflow.ViewExisting(ticketID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("ticket not found", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket", ticket))
}

// TicketQR serves the scannable payload for an issued ticket as PNG.
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.Workflow.FindTicket(ticketID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("ticket not found", err.Error()))
		return
	}

	png, err := passes.QRPNG(ticket.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to render QR", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ExportTicket renders the printable PDF pass.
func (h *Handler) ExportTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.Workflow.FindTicket(ticketID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("ticket not found", err.Error()))
		return
	}

	qrPNG, err := passes.QRPNG(ticket.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to render QR", err.Error()))
		return
	}

	pdf, err := h.Exporter.Export(*ticket, qrPNG)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to export ticket", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", ticket.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *Handler) writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrValidation):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("validation failed", err.Error()))
	case errors.Is(err, ledger.ErrCapacityExceeded):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("capacity exceeded", err.Error()))
	case errors.Is(err, workflow.ErrWrongState):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("request in progress", err.Error()))
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("ticket not found", err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("internal error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
