package leads

import (
	"strings"
	"time"
)

// DefaultManualSource tags leads submitted through the manual lead endpoint.
const DefaultManualSource = "manual-test"

// Payload is what the lead collaborator accepts: a rendered summary block,
// the transcript, and where the lead came from.
type Payload struct {
	Summary    string `json:"summary"`
	Transcript string `json:"transcript"`
	Model      string `json:"model,omitempty"`
	Source     string `json:"source,omitempty"`
}

// Validate requires at least one of summary or transcript.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Summary) == "" && strings.TrimSpace(p.Transcript) == "" {
		return ErrEmptyPayload
	}
	return nil
}

// Lead is a delivered lead as archived for later review.
type Lead struct {
	ID         string    `json:"id"`
	Summary    string    `json:"summary"`
	Transcript string    `json:"transcript"`
	Model      string    `json:"model,omitempty"`
	Source     string    `json:"source,omitempty"`
	Recipient  string    `json:"recipient"`
	MessageID  string    `json:"message_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListFilter narrows archive listings.
type ListFilter struct {
	Source string
	Limit  int
	Offset int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
