package analytics

import (
	"context"
	"encoding/json"

	"github.com/gaedke-construction/smartquote/internal/eventlog"
)

// JSONLStore appends events to a JSON Lines file.
type JSONLStore struct {
	journal *eventlog.Journal
}

func NewJSONLStore(path string) *JSONLStore {
	return &JSONLStore{journal: eventlog.NewJournal(path)}
}

// Record appends evt as one line.
func (s *JSONLStore) Record(_ context.Context, evt Event) error {
	return s.journal.Append(evt)
}

// List returns every line that decodes as an event, skipping the rest.
func (s *JSONLStore) List(_ context.Context) ([]Event, error) {
	lines, err := s.journal.ReadAll()
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(lines))
	for _, line := range lines {
		var evt Event
		if err := json.Unmarshal(line, &evt); err != nil {
			continue
		}
		out = append(out, evt)
	}
	return out, nil
}

var _ Store = (*JSONLStore)(nil)
