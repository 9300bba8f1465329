package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *memoryStore) Record(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, evt)
	return nil
}

func (s *memoryStore) List(context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]Event(nil), s.events...), nil
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestTracker_RecordCountsEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := &memoryStore{}
	tracker := NewTracker(store, NewRedisCounter(client, "test:counts"), nil, nil)

	_, err := tracker.Record(context.Background(), "lead_started", nil, "")
	require.NoError(t, err)
	_, err = tracker.Record(context.Background(), "", nil, "")
	assert.ErrorIs(t, err, ErrMissingEvent)

	counts, ok, err := tracker.Counts(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), counts["lead_started"])
	assert.Equal(t, 1, store.len())
}

func TestTracker_TrackIsDetached(t *testing.T) {
	store := &memoryStore{}
	tracker := NewTracker(store, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	tracker.Track(ctx, EventChatMessageReceived, map[string]any{"quoteComplete": false})
	cancel()

	require.Eventually(t, func() bool { return store.len() == 1 }, time.Second, 5*time.Millisecond)

	var nilTracker *Tracker
	nilTracker.Track(context.Background(), "ignored", nil)
}

func TestTracker_CountsWithoutCounter(t *testing.T) {
	_, ok, err := NewTracker(&memoryStore{}, nil, nil, nil).Counts(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestHandler_RecordAndList(t *testing.T) {
	store := NewJSONLStore(filepath.Join(t.TempDir(), "analytics.jsonl"))
	handler := NewHandler(NewTracker(store, nil, nil, nil), nil)

	body := `{"event":"chat_session_started","data":{"page":"/quote"},"session":"s-1"}`
	w := httptest.NewRecorder()
	handler.Record(w, httptest.NewRequest(http.MethodPost, "/api/analytics", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"logged":true}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []Event `json:"events"`
		Count  int     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "chat_session_started", resp.Events[0].Event)
	assert.Equal(t, "s-1", resp.Events[0].Session)
}

func TestHandler_RecordMissingEvent(t *testing.T) {
	handler := NewHandler(NewTracker(&memoryStore{}, nil, nil, nil), nil)
	w := httptest.NewRecorder()
	handler.Record(w, httptest.NewRequest(http.MethodPost, "/api/analytics", strings.NewReader(`{"data":{}}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing event name"}`, w.Body.String())
}

func TestHandler_RecordStorageFailure(t *testing.T) {
	handler := NewHandler(NewTracker(&memoryStore{err: errors.New("disk full")}, nil, nil, nil), nil)

	for _, body := range []string{`{"event":"x"}`, `not json`} {
		w := httptest.NewRecorder()
		handler.Record(w, httptest.NewRequest(http.MethodPost, "/api/analytics", strings.NewReader(body)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"logged":false,"note":"Logging failed silently"}`, w.Body.String())
	}
}

func TestHandler_ListFailure(t *testing.T) {
	handler := NewHandler(NewTracker(&memoryStore{err: errors.New("db down")}, nil, nil, nil), nil)
	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_Counts(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(NewTracker(&memoryStore{}, nil, nil, nil), nil).Counts(w, httptest.NewRequest(http.MethodGet, "/admin/analytics/counts", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	tracker := NewTracker(&memoryStore{}, NewRedisCounter(client, ""), nil, nil)
	_, err := tracker.Record(context.Background(), "lead_started", nil, "")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	NewHandler(tracker, nil).Counts(w, httptest.NewRequest(http.MethodGet, "/admin/analytics/counts", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"counts":{"lead_started":1}}`, w.Body.String())
}
