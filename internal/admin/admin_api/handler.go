package admin_api

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
	"ms-boxoffice/internal/utils"
	"ms-boxoffice/internal/workflow"
)

// Handler serves the operator dashboard: capacity adjustment, direct ticket
// issue (no approval step) and the full issued-ticket listing.
type Handler struct {
	Workflow *workflow.Workflow
	Event    config.EventConfig
	Logger   *logger.Logger
}

func NewHandler(wf *workflow.Workflow, event config.EventConfig, log *logger.Logger) *Handler {
	return &Handler{Workflow: wf, Event: event, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/summary", h.GetSummary)
		r.Put("/capacity", h.UpdateCapacity)
		r.Get("/tickets", h.ListTickets)
		r.Post("/tickets", h.DirectIssue)
	})
}

type summaryView struct {
	Max        int     `json:"max"`
	Sold       int     `json:"sold"`
	Remaining  int     `json:"remaining"`
	GuestGroup int     `json:"guest_groups"`
	Revenue    float64 `json:"revenue"`
}

// GetSummary returns the dashboard counters: capacity, guest-list groups
// and estimated revenue.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	capacity := h.Workflow.Capacity()
	view := summaryView{
		Max:        capacity.Max,
		Sold:       capacity.Sold,
		Remaining:  h.Workflow.Remaining(),
		GuestGroup: len(h.Workflow.Tickets()),
		Revenue:    float64(capacity.Sold) * h.Event.UnitPrice,
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("summary", view))
}

// UpdateCapacity adjusts the maximum capacity. A value below the current
// sold count is accepted; it freezes further sales rather than invalidating
// issued tickets.
func (h *Handler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Max int `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if req.Max < 0 {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid capacity", "max must not be negative"))
		return
	}

	capacity := h.Workflow.SetMax(r.Context(), req.Max)
	if h.Logger != nil {
		h.Logger.Info("ADMIN", fmt.Sprintf("capacity adjusted to %d (sold %d)", capacity.Max, capacity.Sold))
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("capacity updated", capacity))
}

// DirectIssue materializes a ticket immediately, bypassing the approval
// step. An empty guest name is allowed and replaced with the placeholder
// guest label.
func (h *Handler) DirectIssue(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	_, ticket, err := h.Workflow.Submit(r.Context(), req, true)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrValidation):
			writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("validation failed", err.Error()))
		case errors.Is(err, ledger.ErrCapacityExceeded):
			writeJSON(w, http.StatusConflict, utils.ErrorResponse("capacity exceeded", err.Error()))
		case errors.Is(err, workflow.ErrWrongState):
			writeJSON(w, http.StatusConflict, utils.ErrorResponse("request in progress", err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("internal error", err.Error()))
		}
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("ticket issued", ticket))
}

// ListTickets returns the full history, most recent first.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.SuccessResponse("tickets", h.Workflow.Tickets()))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
