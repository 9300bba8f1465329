package quote

import "strings"

// BuildPrompt joins the system instruction and the rendered conversation
// with blank lines. An empty system instruction is left out.
func BuildPrompt(system string, msgs []ChatMessage) string {
	parts := make([]string, 0, len(msgs)+1)
	if strings.TrimSpace(system) != "" {
		parts = append(parts, system)
	}
	for _, m := range msgs {
		parts = append(parts, renderLine(m))
	}
	return strings.Join(parts, "\n\n")
}
