package quote

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gaedke-construction/smartquote/internal/leads"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

var dispatchTracer = otel.Tracer("smartquote.internal.quote.dispatch")

// LeadSender delivers a lead to the business owner.
type LeadSender interface {
	SendLead(ctx context.Context, payload leads.Payload) error
}

// DispatchResult reports whether a lead reached the owner.
type DispatchResult struct {
	Sent  bool
	Error string
}

// Dispatcher hands extracted leads to a LeadSender. Delivery is best effort:
// failures are reported in the result and never returned as errors.
type Dispatcher struct {
	sender LeadSender
	logger *logging.Logger
}

func NewDispatcher(sender LeadSender, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Dispatch sends the lead summary and transcript. A panic inside the sender
// is reported like any other failure.
func (d *Dispatcher) Dispatch(ctx context.Context, rec LeadRecord) (result DispatchResult) {
	ctx, span := dispatchTracer.Start(ctx, "quote.lead.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("lead.source", rec.Source), attribute.String("llm.model", rec.Model))

	defer func() {
		if r := recover(); r != nil {
			result = DispatchResult{Sent: false, Error: fmt.Sprint(r)}
			d.logger.Error("lead sender panicked", "panic", r, "source", rec.Source)
			span.SetStatus(codes.Error, "lead sender panicked")
		}
	}()

	if d.sender == nil {
		return DispatchResult{Sent: false, Error: "lead sender not configured"}
	}

	err := d.sender.SendLead(ctx, leads.Payload{
		Summary:    rec.Summary(),
		Transcript: rec.Transcript,
		Model:      rec.Model,
		Source:     rec.Source,
	})
	if err != nil {
		d.logger.Warn("lead dispatch failed", "error", err, "model", rec.Model, "source", rec.Source)
		span.RecordError(err)
		span.SetStatus(codes.Error, "lead dispatch failed")
		return DispatchResult{Sent: false, Error: err.Error()}
	}
	d.logger.Info("lead dispatched", "model", rec.Model, "source", rec.Source, "phone_detected", rec.ClientPhone != PhoneMissing)
	return DispatchResult{Sent: true}
}
