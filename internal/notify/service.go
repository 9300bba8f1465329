package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gaedke-construction/smartquote/internal/eventlog"
	"github.com/gaedke-construction/smartquote/internal/leads"
	"github.com/gaedke-construction/smartquote/internal/observability/metrics"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// ErrRecipientMissing is returned when LEAD_EMAIL_TO is not configured.
var ErrRecipientMissing = errors.New("lead recipient not configured")

const subjectTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// LeadLogEntry is one line of the lead delivery journal. One entry is
// written per delivery attempt, successful or not.
type LeadLogEntry struct {
	Timestamp  string  `json:"timestamp"`
	To         string  `json:"to"`
	Subject    string  `json:"subject"`
	Model      *string `json:"model"`
	Source     *string `json:"source"`
	Summary    string  `json:"summary"`
	Transcript string  `json:"transcript"`
	OK         bool    `json:"ok"`
	Error      string  `json:"error,omitempty"`
	MessageID  string  `json:"message_id,omitempty"`
}

// ServiceOptions wires the optional collaborators of the lead service.
type ServiceOptions struct {
	Journal  *eventlog.Journal
	Archives []leads.Archiver
	Metrics  *metrics.QuoteMetrics
	Now      func() time.Time
}

// Service delivers qualified leads to the business owner by email.
type Service struct {
	email    EmailSender
	to       string
	journal  *eventlog.Journal
	archives []leads.Archiver
	metrics  *metrics.QuoteMetrics
	now      func() time.Time
	logger   *logging.Logger
}

// NewService creates a lead notification service sending to recipient.
func NewService(email EmailSender, recipient string, opts ServiceOptions, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	archives := make([]leads.Archiver, 0, len(opts.Archives))
	for _, a := range opts.Archives {
		if a != nil {
			archives = append(archives, a)
		}
	}
	return &Service{
		email:    email,
		to:       strings.TrimSpace(recipient),
		journal:  opts.Journal,
		archives: archives,
		metrics:  opts.Metrics,
		now:      now,
		logger:   logger,
	}
}

// Subject renders the lead mail subject for the given instant.
func Subject(at time.Time) string {
	return fmt.Sprintf("New Smart Quote from Website (%s)", at.UTC().Format(subjectTimeLayout))
}

// Body renders the plain-text lead mail body.
func Body(p leads.Payload) string {
	model := p.Model
	if model == "" {
		model = "unknown"
	}
	source := p.Source
	if source == "" {
		source = "web"
	}
	return fmt.Sprintf("%s\n\n%s\n\nModel: %s\nSource: %s", p.Summary, p.Transcript, model, source)
}

// SendLead emails the lead, journals the attempt, and archives it on success.
// Journal and archive failures are logged and never fail the delivery.
func (s *Service) SendLead(ctx context.Context, p leads.Payload) error {
	at := s.now()
	subject := Subject(at)
	entry := LeadLogEntry{
		Timestamp:  at.UTC().Format(subjectTimeLayout),
		To:         s.to,
		Subject:    subject,
		Model:      optional(p.Model),
		Source:     optional(p.Source),
		Summary:    p.Summary,
		Transcript: p.Transcript,
	}

	result, err := s.deliver(ctx, subject, p)
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.OK = true
		entry.MessageID = result.MessageID
	}
	s.record(entry)
	s.metrics.ObserveLead(p.Source, err == nil)

	if err != nil {
		s.logger.Warn("lead delivery failed", "error", err, "source", p.Source, "model", p.Model)
		return err
	}
	s.logger.Info("lead delivered", "provider", result.Provider, "message_id", result.MessageID, "source", p.Source)

	s.archive(ctx, &leads.Lead{
		Summary:    p.Summary,
		Transcript: p.Transcript,
		Model:      p.Model,
		Source:     p.Source,
		Recipient:  s.to,
		MessageID:  result.MessageID,
		CreatedAt:  at.UTC(),
	})
	return nil
}

func (s *Service) deliver(ctx context.Context, subject string, p leads.Payload) (SendResult, error) {
	if s.to == "" {
		return SendResult{}, ErrRecipientMissing
	}
	if s.email == nil {
		return SendResult{}, errors.New("email sender not configured")
	}
	return s.email.Send(ctx, EmailMessage{
		To:      s.to,
		Subject: subject,
		Body:    Body(p),
	})
}

func (s *Service) record(entry LeadLogEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(entry); err != nil {
		s.logger.Warn("failed to write lead log", "error", err, "path", s.journal.Path())
	}
}

func (s *Service) archive(ctx context.Context, lead *leads.Lead) {
	for _, a := range s.archives {
		copied := *lead
		if err := a.Archive(ctx, &copied); err != nil {
			s.logger.Warn("lead archive failed", "error", err, "archive", fmt.Sprintf("%T", a))
		}
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

var _ leads.Notifier = (*Service)(nil)
