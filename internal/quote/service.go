package quote

import (
	"context"

	"github.com/gaedke-construction/smartquote/internal/observability/metrics"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// Response is the outcome of one chat turn.
type Response struct {
	Message       string
	Model         string
	QuoteComplete bool
	// Lead is nil unless the reply looked like a quote and dispatch was attempted.
	Lead *DispatchResult
}

// ServiceConfig holds the static settings of a chat turn.
type ServiceConfig struct {
	SystemPrompt string
	LeadSource   string
}

// Service runs the chat pipeline: generate, detect, extract, dispatch.
type Service struct {
	gateway    *Gateway
	dispatcher *Dispatcher
	cfg        ServiceConfig
	metrics    *metrics.QuoteMetrics
	logger     *logging.Logger
}

func NewService(gateway *Gateway, dispatcher *Dispatcher, cfg ServiceConfig, m *metrics.QuoteMetrics, logger *logging.Logger) *Service {
	if gateway == nil {
		panic("quote: gateway cannot be nil")
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher(nil, logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		gateway:    gateway,
		dispatcher: dispatcher,
		cfg:        cfg,
		metrics:    m,
		logger:     logger,
	}
}

// Gateway exposes the underlying model gateway.
func (s *Service) Gateway() *Gateway {
	return s.gateway
}

// Respond generates a reply for msgs. When the reply looks like a quote the
// lead is extracted from the same msgs and dispatched. Lead failures are
// reported in Response.Lead; only generation failures return an error.
func (s *Service) Respond(ctx context.Context, msgs []ChatMessage) (Response, error) {
	reply, err := s.gateway.Generate(ctx, s.cfg.SystemPrompt, msgs)
	if err != nil {
		return Response{}, err
	}

	resp := Response{
		Message:       reply.Text,
		Model:         reply.Model,
		QuoteComplete: IsQuoteComplete(reply.Text),
	}
	s.metrics.ObserveReply(resp.QuoteComplete)
	if !resp.QuoteComplete {
		return resp, nil
	}

	rec := ExtractLead(msgs)
	rec.Model = reply.Model
	rec.Source = s.cfg.LeadSource
	result := s.dispatcher.Dispatch(ctx, rec)
	resp.Lead = &result
	return resp, nil
}
