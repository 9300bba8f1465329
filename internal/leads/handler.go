package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// Notifier delivers a lead to the business owner.
type Notifier interface {
	SendLead(ctx context.Context, payload Payload) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	notifier Notifier
	repo     Repository
	logger   *logging.Logger
}

// NewHandler creates a new leads handler. repo may be nil when no archive is configured.
func NewHandler(notifier Notifier, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		notifier: notifier,
		repo:     repo,
		logger:   logger,
	}
}

type submitResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SubmitLead handles POST /api/lead, the manual delivery path the site
// falls back to when the chat could not send a lead itself.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("failed to decode lead request", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(payload.Source) == "" {
		payload.Source = DefaultManualSource
	}
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing summary or transcript"})
		return
	}
	if h.notifier == nil {
		writeJSON(w, http.StatusInternalServerError, submitResponse{OK: false, Error: "lead delivery not configured"})
		return
	}

	if err := h.notifier.SendLead(r.Context(), payload); err != nil {
		h.logger.Warn("manual lead delivery failed", "error", err, "source", payload.Source)
		writeJSON(w, http.StatusInternalServerError, submitResponse{OK: false, Error: err.Error()})
		return
	}

	h.logger.Info("manual lead delivered", "source", payload.Source, "model", payload.Model)
	writeJSON(w, http.StatusOK, submitResponse{OK: true})
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads handles GET /admin/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, "lead archive not configured", http.StatusNotFound)
		return
	}

	filter := ListFilter{
		Limit:  50,
		Offset: 0,
		Source: r.URL.Query().Get("source"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

// GetLead handles GET /admin/leads/{leadID}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, "lead archive not configured", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "leadID")
	if id == "" {
		http.Error(w, "missing lead id", http.StatusBadRequest)
		return
	}

	lead, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrLeadNotFound) {
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get lead", "error", err, "lead_id", id)
		http.Error(w, "failed to get lead", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
