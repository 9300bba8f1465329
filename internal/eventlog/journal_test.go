package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Event string `json:"event"`
	N     int    `json:"n"`
}

func TestJournalAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quote-log.jsonl")
	j := NewJournal(path)

	require.NoError(t, j.Append(entry{Event: "a", N: 1}))
	require.NoError(t, j.Append(entry{Event: "b", N: 2}))

	lines, err := j.ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2)

	var first entry
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, entry{Event: "a", N: 1}, first)
}

func TestJournalReadAllMissingFile(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "absent.jsonl"))
	lines, err := j.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestJournalReadAllSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.jsonl")
	content := "{\"event\":\"ok\"}\nnot json\n\n{\"event\":\"also-ok\"}\n{broken\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := NewJournal(path).ReadAll()
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestJournalConcurrentAppends(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "log.jsonl"))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, j.Append(entry{Event: "concurrent", N: n}))
		}(i)
	}
	wg.Wait()

	lines, err := j.ReadAll()
	require.NoError(t, err)
	assert.Len(t, lines, 25)
}

func TestJournalWithoutPath(t *testing.T) {
	var j *Journal
	assert.Error(t, j.Append(entry{}))
	assert.Error(t, NewJournal("").Append(entry{}))
}

func TestJournalMarshalError(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "log.jsonl"))
	assert.Error(t, j.Append(map[string]any{"bad": make(chan int)}))
}

func TestDetachRunsWithUncancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	Detach(ctx, nil, "test", func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		done <- ctx.Err()
		return errors.New("ignored")
	})
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("detached task did not run")
	}
}

func TestDetachSurvivesPanic(t *testing.T) {
	ran := make(chan struct{})
	Detach(context.Background(), nil, "panics", func(context.Context) error {
		close(ran)
		panic("boom")
	})
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("detached task did not run")
	}
	Detach(context.Background(), nil, "nil", nil)
}
