package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// Handler serves the analytics endpoints.
type Handler struct {
	tracker *Tracker
	logger  *logging.Logger
}

func NewHandler(tracker *Tracker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{tracker: tracker, logger: logger}
}

type recordRequest struct {
	Event   string         `json:"event"`
	Data    map[string]any `json:"data"`
	Session string         `json:"session"`
}

type recordResponse struct {
	OK     bool   `json:"ok"`
	Logged bool   `json:"logged"`
	Note   string `json:"note,omitempty"`
}

type listResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Record handles POST /api/analytics. Storage failures never fail the
// request; the response reports logged=false instead.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("analytics decode failed", "error", err)
		writeJSON(w, http.StatusOK, recordResponse{OK: true, Logged: false, Note: "Logging failed silently"})
		return
	}
	if req.Event == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing event name"})
		return
	}

	if _, err := h.tracker.Record(r.Context(), req.Event, req.Data, req.Session); err != nil {
		h.logger.Error("analytics logging error", "error", err, "event", req.Event)
		writeJSON(w, http.StatusOK, recordResponse{OK: true, Logged: false, Note: "Logging failed silently"})
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{OK: true, Logged: true})
}

// List handles GET /api/analytics.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.tracker.List(r.Context())
	if err != nil {
		h.logger.Error("analytics list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Events: events, Count: len(events)})
}

// Counts handles GET /admin/analytics/counts.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, ok, err := h.tracker.Counts(r.Context())
	if !ok {
		http.Error(w, "analytics counters not configured", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("analytics counts failed", "error", err)
		http.Error(w, "failed to read counts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}
