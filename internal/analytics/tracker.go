package analytics

import (
	"context"
	"time"

	"github.com/gaedke-construction/smartquote/internal/eventlog"
	"github.com/gaedke-construction/smartquote/internal/observability/metrics"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// Tracker records events to a store and, optionally, a counter.
type Tracker struct {
	store   Store
	counter Counter
	metrics *metrics.QuoteMetrics
	now     func() time.Time
	logger  *logging.Logger
}

// NewTracker creates a tracker. counter may be nil.
func NewTracker(store Store, counter Counter, m *metrics.QuoteMetrics, logger *logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Tracker{
		store:   store,
		counter: counter,
		metrics: m,
		now:     time.Now,
		logger:  logger,
	}
}

// Record stores the event synchronously. Counter failures are logged only.
func (t *Tracker) Record(ctx context.Context, name string, data map[string]any, session string) (Event, error) {
	evt := NewEvent(t.now(), name, data, session)
	if err := evt.Validate(); err != nil {
		return evt, err
	}

	err := t.store.Record(ctx, evt)
	t.metrics.ObserveAnalyticsEvent(err == nil)
	if err != nil {
		return evt, err
	}
	if t.counter != nil {
		if cerr := t.counter.Incr(ctx, name); cerr != nil {
			t.logger.Warn("analytics counter failed", "error", cerr, "event", name)
		}
	}
	return evt, nil
}

// Track records the event in the background. Failures are discarded.
func (t *Tracker) Track(ctx context.Context, name string, data map[string]any) {
	if t == nil {
		return
	}
	eventlog.Detach(ctx, t.logger, "analytics:"+name, func(ctx context.Context) error {
		_, err := t.Record(ctx, name, data, "")
		return err
	})
}

// List returns all stored events.
func (t *Tracker) List(ctx context.Context) ([]Event, error) {
	return t.store.List(ctx)
}

// Counts returns per-event totals. ok is false when no counter is configured.
func (t *Tracker) Counts(ctx context.Context) (counts map[string]int64, ok bool, err error) {
	if t.counter == nil {
		return nil, false, nil
	}
	counts, err = t.counter.Counts(ctx)
	return counts, true, err
}
