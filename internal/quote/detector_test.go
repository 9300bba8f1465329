package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQuoteComplete(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"dollar amount", "Total due: $500", true},
		{"dollar with space and groups", "That comes to $ 45,000.00 installed.", true},
		{"keyword as verb", "I can't total that yet", true},
		{"uppercase keyword", "ESTIMATE ATTACHED", true},
		{"grand total", "Your grand total is below.", true},
		{"hypothetical quote", "I cannot give you a quote yet", true},
		{"price", "The price depends on materials.", true},
		{"plain question", "I'd be happy to help, what's your project?", false},
		{"keyword inside word", "Totally doable, tell me more.", false},
		{"quoted inside word", "She misquoted nothing", false},
		{"dollar without digits", "Bring $ and patience", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuoteComplete(tt.text))
		})
	}
}
