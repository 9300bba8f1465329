// Package eventlog provides the append-only JSON Lines journals used for lead
// and analytics records, plus the detached dispatch helper for best-effort
// side effects.
package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Journal appends one JSON document per line to a file.
// Appends from concurrent requests are serialized by the journal.
type Journal struct {
	path string
	mu   sync.Mutex
}

// NewJournal returns a journal writing to path. The parent directory is
// created lazily on first append.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Append marshals v and writes it as a single line.
func (j *Journal) Append(v any) error {
	if j == nil || j.path == "" {
		return errors.New("eventlog: journal path not configured")
	}
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("eventlog: marshal entry: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("eventlog: create journal dir: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("eventlog: open journal: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("eventlog: write journal: %w", err)
	}
	return f.Close()
}

// ReadAll returns every line that parses as JSON, in file order.
// A missing file yields an empty slice; malformed lines are skipped.
func (j *Journal) ReadAll() ([]json.RawMessage, error) {
	if j == nil || j.path == "" {
		return nil, errors.New("eventlog: journal path not configured")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eventlog: open journal: %w", err)
	}
	defer f.Close()

	out := []json.RawMessage{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		out = append(out, json.RawMessage(append([]byte(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: scan journal: %w", err)
	}
	return out, nil
}
