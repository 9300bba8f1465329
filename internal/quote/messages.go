// Package quote implements the smart-quote chat pipeline: prompt assembly,
// the model candidate gateway, quote detection, lead extraction and lead
// dispatch.
package quote

import (
	"strings"
)

// Role is the speaker of a chat message. Only two roles exist.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// NormalizeRole maps an arbitrary role label onto the two known roles.
// Only the exact string "assistant" is an assistant; everything else is user.
func NormalizeRole(label string) Role {
	if label == string(RoleAssistant) {
		return RoleAssistant
	}
	return RoleUser
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// InboundMessage is a message as received at the HTTP boundary, after
// tolerant decoding has reduced role and content to plain strings.
type InboundMessage struct {
	Role    string
	Content string
}

// Normalize converts inbound messages to chat messages, preserving order.
func Normalize(in []InboundMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(in))
	for _, m := range in {
		out = append(out, ChatMessage{Role: NormalizeRole(m.Role), Content: m.Content})
	}
	return out
}

func renderLine(m ChatMessage) string {
	return strings.ToUpper(string(m.Role)) + ": " + m.Content
}

// RenderTranscript renders each message as "ROLE: content", separated by
// blank lines.
func RenderTranscript(msgs []ChatMessage) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, renderLine(m))
	}
	return strings.Join(lines, "\n\n")
}
