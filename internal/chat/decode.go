package chat

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gaedke-construction/smartquote/internal/quote"
)

var errInvalidBody = errors.New("chat: request body is not valid JSON")

// decodeMessages reads {"messages":[...]} leniently. Only a body that is not
// JSON at all is rejected. A missing or non-array messages field is an empty
// conversation, and each element is reduced to string role and content.
func decodeMessages(body []byte) ([]quote.InboundMessage, error) {
	if !json.Valid(body) {
		return nil, errInvalidBody
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []quote.InboundMessage{}, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(envelope["messages"], &elems); err != nil {
		return []quote.InboundMessage{}, nil
	}

	out := make([]quote.InboundMessage, 0, len(elems))
	for _, elem := range elems {
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(elem, &fields)
		out = append(out, quote.InboundMessage{
			Role:    stringField(fields["role"]),
			Content: contentField(fields["content"]),
		})
	}
	return out, nil
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// contentField returns strings as-is, null or missing as "", and any other
// JSON value as its compact text.
func contentField(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}
