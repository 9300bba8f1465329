package analytics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventTime = time.Date(2026, 10, 18, 15, 4, 5, 678000000, time.UTC)

func TestNewEvent(t *testing.T) {
	evt := NewEvent(eventTime.In(time.FixedZone("CDT", -5*3600)), "chat_session_started", nil, "s-1")
	assert.Equal(t, "2026-10-18T15:04:05.678Z", evt.Timestamp)
	assert.NotNil(t, evt.Data)
	assert.NoError(t, evt.Validate())
	assert.ErrorIs(t, Event{Event: " "}.Validate(), ErrMissingEvent)
}

func TestJSONLStore_RecordAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "analytics.jsonl")
	store := NewJSONLStore(path)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, NewEvent(eventTime, "lead_started", map[string]any{"page": "quote"}, "")))
	require.NoError(t, store.Record(ctx, NewEvent(eventTime, "lead_submitted_success", nil, "abc")))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("garbage\n42\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "lead_started", events[0].Event)
	assert.Equal(t, "quote", events[0].Data["page"])
	assert.Equal(t, "abc", events[1].Session)
}

func TestJSONLStore_ListMissingFile(t *testing.T) {
	events, err := NewJSONLStore(filepath.Join(t.TempDir(), "none.jsonl")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSQLStore_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO analytics_events").
		WithArgs(eventTime, "chat_message_received", []byte(`{"model":"gemini-1.5"}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewSQLStore(db)
	err = store.Record(context.Background(), NewEvent(eventTime, "chat_message_received", map[string]any{"model": "gemini-1.5"}, ""))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"occurred_at", "event", "data", "session"}).
		AddRow(eventTime, "lead_started", []byte(`{"step":1}`), nil).
		AddRow(eventTime.Add(time.Minute), "lead_submitted_failed", []byte(`not json`), "s-9")
	mock.ExpectQuery("SELECT occurred_at, event, data, session").WillReturnRows(rows)

	events, err := NewSQLStore(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, float64(1), events[0].Data["step"])
	assert.Empty(t, events[0].Session)
	assert.Empty(t, events[1].Data)
	assert.Equal(t, "s-9", events[1].Session)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CountByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT event, COUNT").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"event", "count"}).
			AddRow("lead_submitted_success", 4).
			AddRow("lead_submitted_failed", 1))

	counts, err := NewSQLStore(db).CountByName(context.Background(), []string{EventLeadSubmittedSuccess, EventLeadSubmittedFailed})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"lead_submitted_success": 4, "lead_submitted_failed": 1}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCounter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	counter := NewRedisCounter(client, "")
	ctx := context.Background()
	require.NoError(t, counter.Incr(ctx, "chat_message_received"))
	require.NoError(t, counter.Incr(ctx, "chat_message_received"))
	require.NoError(t, counter.Incr(ctx, "lead_submitted_success"))
	mr.HSet(defaultCounterKey, "corrupt", "x")

	counts, err := counter.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"chat_message_received": 2, "lead_submitted_success": 1}, counts)
}

func TestRedisCounter_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisCounter(nil, ""))
}
