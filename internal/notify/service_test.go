package notify

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaedke-construction/smartquote/internal/eventlog"
	"github.com/gaedke-construction/smartquote/internal/leads"
	"github.com/gaedke-construction/smartquote/internal/observability/metrics"
)

type mockEmailSender struct {
	mu       sync.Mutex
	messages []EmailMessage
	err      error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) (SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if m.err != nil {
		return SendResult{}, m.err
	}
	return SendResult{Provider: "mock", MessageID: "<msg-1@example.com>"}, nil
}

type failingArchive struct{ calls int }

func (f *failingArchive) Archive(context.Context, *leads.Lead) error {
	f.calls++
	return errors.New("bucket unreachable")
}

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 18, 14, 5, 9, 123000000, time.FixedZone("CDT", -5*3600))
}

func readEntries(t *testing.T, j *eventlog.Journal) []LeadLogEntry {
	t.Helper()
	lines, err := j.ReadAll()
	require.NoError(t, err)
	out := make([]LeadLogEntry, 0, len(lines))
	for _, line := range lines {
		var e LeadLogEntry
		require.NoError(t, json.Unmarshal(line, &e))
		out = append(out, e)
	}
	return out
}

func TestSubjectUsesUTCMillis(t *testing.T) {
	assert.Equal(t, "New Smart Quote from Website (2026-10-18T19:05:09.123Z)", Subject(fixedNow()))
}

func TestBodyDefaults(t *testing.T) {
	body := Body(leads.Payload{Summary: "SUMMARY", Transcript: "USER: hi"})
	assert.Equal(t, "SUMMARY\n\nUSER: hi\n\nModel: unknown\nSource: web", body)

	body = Body(leads.Payload{Summary: "S", Transcript: "T", Model: "gemini-1.5", Source: "chat-api"})
	assert.Equal(t, "S\n\nT\n\nModel: gemini-1.5\nSource: chat-api", body)
}

func TestService_SendLead_Success(t *testing.T) {
	email := &mockEmailSender{}
	journal := eventlog.NewJournal(filepath.Join(t.TempDir(), "quote-log.jsonl"))
	archive := leads.NewInMemoryRepository()
	reg := prometheus.NewRegistry()

	svc := NewService(email, "owner@example.com", ServiceOptions{
		Journal:  journal,
		Archives: []leads.Archiver{archive, nil},
		Metrics:  metrics.NewQuoteMetrics(reg),
		Now:      fixedNow,
	}, nil)

	err := svc.SendLead(context.Background(), leads.Payload{
		Summary:    "NAME: Jane",
		Transcript: "USER: hi",
		Model:      "gemini-1.5",
		Source:     "chat-api",
	})
	require.NoError(t, err)

	require.Len(t, email.messages, 1)
	msg := email.messages[0]
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, Subject(fixedNow()), msg.Subject)
	assert.Contains(t, msg.Body, "Model: gemini-1.5\nSource: chat-api")

	entries := readEntries(t, journal)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].OK)
	assert.Equal(t, "<msg-1@example.com>", entries[0].MessageID)
	require.NotNil(t, entries[0].Model)
	assert.Equal(t, "gemini-1.5", *entries[0].Model)

	archived, err := archive.List(context.Background(), leads.ListFilter{})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "owner@example.com", archived[0].Recipient)
	assert.Equal(t, "<msg-1@example.com>", archived[0].MessageID)
}

func TestService_SendLead_SendFailure(t *testing.T) {
	email := &mockEmailSender{err: ErrSMTPCredentialsMissing}
	journal := eventlog.NewJournal(filepath.Join(t.TempDir(), "quote-log.jsonl"))
	archive := leads.NewInMemoryRepository()

	svc := NewService(email, "owner@example.com", ServiceOptions{
		Journal:  journal,
		Archives: []leads.Archiver{archive},
		Now:      fixedNow,
	}, nil)

	err := svc.SendLead(context.Background(), leads.Payload{Summary: "S"})
	require.ErrorIs(t, err, ErrSMTPCredentialsMissing)

	entries := readEntries(t, journal)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].OK)
	assert.Contains(t, entries[0].Error, "SMTP credentials missing")
	assert.Nil(t, entries[0].Model)
	assert.Nil(t, entries[0].Source)

	archived, _ := archive.List(context.Background(), leads.ListFilter{})
	assert.Empty(t, archived)
}

func TestService_SendLead_NoRecipient(t *testing.T) {
	email := &mockEmailSender{}
	svc := NewService(email, "  ", ServiceOptions{Now: fixedNow}, nil)

	err := svc.SendLead(context.Background(), leads.Payload{Summary: "S"})
	require.ErrorIs(t, err, ErrRecipientMissing)
	assert.Empty(t, email.messages)
}

func TestService_SendLead_NoSender(t *testing.T) {
	svc := NewService(nil, "owner@example.com", ServiceOptions{}, nil)
	assert.Error(t, svc.SendLead(context.Background(), leads.Payload{Summary: "S"}))
}

func TestService_SendLead_ArchiveAndJournalFailuresSwallowed(t *testing.T) {
	email := &mockEmailSender{}
	archive := &failingArchive{}
	// A directory path cannot be opened for append.
	journal := eventlog.NewJournal(t.TempDir())

	svc := NewService(email, "owner@example.com", ServiceOptions{
		Journal:  journal,
		Archives: []leads.Archiver{archive},
		Now:      fixedNow,
	}, nil)

	require.NoError(t, svc.SendLead(context.Background(), leads.Payload{Transcript: "T"}))
	assert.Equal(t, 1, archive.calls)
}
