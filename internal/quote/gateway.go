package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaedke-construction/smartquote/internal/observability/metrics"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

var gatewayTracer = otel.Tracer("smartquote.internal.quote.gateway")

var (
	// ErrModelUnavailable is returned (wrapped) by generators when the
	// requested model identifier is unknown or unsupported by the provider.
	ErrModelUnavailable = errors.New("quote: model unavailable")

	// ErrNoAvailableModel means every candidate model was unavailable.
	ErrNoAvailableModel = errors.New("quote: no available model")
)

// Generator produces text for a prompt using the named model.
type Generator interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, modelID, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	return f(ctx, modelID, prompt)
}

// AttemptStatus is the outcome of one model call.
type AttemptStatus int

const (
	AttemptOK AttemptStatus = iota
	AttemptUnavailable
	AttemptFatal
)

func (s AttemptStatus) String() string {
	switch s {
	case AttemptOK:
		return "ok"
	case AttemptUnavailable:
		return "unavailable"
	default:
		return "fatal"
	}
}

// Attempt is the result of calling a single candidate model.
// Text is set for AttemptOK; Err is set otherwise.
type Attempt struct {
	Model  string
	Status AttemptStatus
	Text   string
	Err    error
}

var unavailableMarkers = []string{"not found", "not supported", "generatecontent"}

// ClassifyError decides whether a generation error means the model is
// unavailable (try the next candidate) or the call failed for another reason.
func ClassifyError(err error) AttemptStatus {
	if err == nil {
		return AttemptOK
	}
	if errors.Is(err, ErrModelUnavailable) {
		return AttemptUnavailable
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range unavailableMarkers {
		if strings.Contains(msg, marker) {
			return AttemptUnavailable
		}
	}
	return AttemptFatal
}

// Reply is generated text and the model that produced it.
type Reply struct {
	Text  string
	Model string
}

// Gateway tries an ordered list of candidate models until one answers.
type Gateway struct {
	generator  Generator
	candidates []string
	metrics    *metrics.QuoteMetrics
	logger     *logging.Logger
}

// NewGateway copies candidates; later changes to the slice do not affect the gateway.
func NewGateway(generator Generator, candidates []string, m *metrics.QuoteMetrics, logger *logging.Logger) *Gateway {
	if generator == nil {
		panic("quote: generator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gateway{
		generator:  generator,
		candidates: append([]string(nil), candidates...),
		metrics:    m,
		logger:     logger,
	}
}

// Candidates returns a copy of the candidate list in priority order.
func (g *Gateway) Candidates() []string {
	return append([]string(nil), g.candidates...)
}

// Try calls a single model and classifies the outcome.
func (g *Gateway) Try(ctx context.Context, modelID, prompt string) Attempt {
	ctx, span := gatewayTracer.Start(ctx, "quote.gateway.attempt",
		trace.WithAttributes(attribute.String("llm.model", modelID)))
	defer span.End()

	start := time.Now()
	text, err := g.generator.Generate(ctx, modelID, prompt)
	status := ClassifyError(err)
	g.metrics.ObserveAttempt(modelID, status.String(), time.Since(start).Seconds())

	span.SetAttributes(attribute.String("llm.outcome", status.String()))
	if err != nil {
		span.RecordError(err)
		if status == AttemptFatal {
			span.SetStatus(codes.Error, "generation failed")
		}
	}
	return Attempt{Model: modelID, Status: status, Text: text, Err: err}
}

// Generate sends the prompt built from system and msgs to each candidate in
// order. The first success is returned and later candidates are not called.
// A fatal error stops the loop. If every candidate is unavailable the error
// wraps ErrNoAvailableModel and carries the last provider message.
func (g *Gateway) Generate(ctx context.Context, system string, msgs []ChatMessage) (Reply, error) {
	prompt := BuildPrompt(system, msgs)

	var last error
	for _, modelID := range g.candidates {
		attempt := g.Try(ctx, modelID, prompt)
		switch attempt.Status {
		case AttemptOK:
			return Reply{Text: attempt.Text, Model: modelID}, nil
		case AttemptUnavailable:
			g.logger.Debug("model unavailable, trying next candidate", "model", modelID, "error", attempt.Err)
			last = attempt.Err
		case AttemptFatal:
			g.logger.Warn("model call failed", "model", modelID, "error", attempt.Err)
			return Reply{}, fmt.Errorf("quote: generate with %s: %w", modelID, attempt.Err)
		}
	}

	if last == nil {
		return Reply{}, ErrNoAvailableModel
	}
	return Reply{}, fmt.Errorf("%w: %s", ErrNoAvailableModel, last.Error())
}
