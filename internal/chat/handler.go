// Package chat serves the smart-quote chat endpoint.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gaedke-construction/smartquote/internal/analytics"
	"github.com/gaedke-construction/smartquote/internal/llm"
	"github.com/gaedke-construction/smartquote/internal/quote"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Responder produces the reply for one chat turn.
type Responder interface {
	Respond(ctx context.Context, msgs []quote.ChatMessage) (quote.Response, error)
}

// Handler serves POST /api/chat and GET /api/chat/models.
type Handler struct {
	responder     Responder
	models        llm.ModelLister
	tracker       *analytics.Tracker
	businessPhone string
	logger        *logging.Logger
}

// HandlerConfig wires the chat handler. Responder is nil when no model
// credentials are configured.
type HandlerConfig struct {
	Responder     Responder
	Models        llm.ModelLister
	Tracker       *analytics.Tracker
	BusinessPhone string
}

func NewHandler(cfg HandlerConfig, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		responder:     cfg.Responder,
		models:        cfg.Models,
		tracker:       cfg.Tracker,
		businessPhone: strings.TrimSpace(cfg.BusinessPhone),
		logger:        logger,
	}
}

// Response is the JSON body of a successful chat turn.
type Response struct {
	Message       string `json:"message"`
	Model         string `json:"model"`
	QuoteComplete bool   `json:"quoteComplete"`
	LeadSent      *bool  `json:"leadSent,omitempty"`
	LeadError     string `json:"leadError,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) fallbackMessage() string {
	if h.businessPhone == "" {
		return "Sorry, I'm having trouble right now. Please contact us directly and we'll help with your project."
	}
	return fmt.Sprintf("Sorry, I'm having trouble right now. Please call us at %s and we'll help with your project.", h.businessPhone)
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.responder == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Missing API Key"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body", Message: h.fallbackMessage()})
		return
	}
	inbound, err := decodeMessages(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Message: h.fallbackMessage()})
		return
	}
	msgs := quote.Normalize(inbound)

	resp, err := h.responder.Respond(r.Context(), msgs)
	if err != nil {
		h.logger.Error("chat generation failed", "error", err, "messages", len(msgs))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Message: h.fallbackMessage()})
		return
	}

	out := Response{
		Message:       resp.Message,
		Model:         resp.Model,
		QuoteComplete: resp.QuoteComplete,
	}
	h.tracker.Track(r.Context(), analytics.EventChatMessageReceived, map[string]any{
		"model":         resp.Model,
		"quoteComplete": resp.QuoteComplete,
		"messages":      len(msgs),
	})

	if resp.Lead != nil {
		sent := resp.Lead.Sent
		out.LeadSent = &sent
		out.LeadError = resp.Lead.Error
		event := analytics.EventLeadSubmittedSuccess
		data := map[string]any{"model": resp.Model, "source": "chat"}
		if !sent {
			event = analytics.EventLeadSubmittedFailed
			data["error"] = resp.Lead.Error
		}
		h.tracker.Track(r.Context(), event, data)
	}

	writeJSON(w, http.StatusOK, out)
}

type modelsResponse struct {
	Models []llm.ModelInfo `json:"models"`
	Count  int             `json:"count"`
}

// Models handles GET /api/chat/models.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	if h.models == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Missing API Key"})
		return
	}
	models, err := h.models.ListModels(r.Context())
	if err != nil {
		h.logger.Error("list models failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, modelsResponse{Models: models, Count: len(models)})
}
