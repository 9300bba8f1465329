package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gaedke-construction/smartquote/internal/quote"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

func TestProbeReportsEachCandidate(t *testing.T) {
	gen := quote.GeneratorFunc(func(_ context.Context, modelID, _ string) (string, error) {
		switch modelID {
		case "gemini-1.0":
			return "", fmt.Errorf("models/gemini-1.0 is not found for API version v1beta: %w", quote.ErrModelUnavailable)
		case "chat-bison":
			return "", errors.New("permission denied")
		default:
			return "OK\n", nil
		}
	})
	gateway := quote.NewGateway(gen, []string{"gemini-1.5", "gemini-1.0", "chat-bison"}, nil, logging.New("error"))

	var out bytes.Buffer
	ok := probe(context.Background(), &out, gateway, defaultProbePrompt, time.Second)

	assert.Equal(t, 1, ok)
	report := out.String()
	assert.Contains(t, report, "gemini-1.5")
	assert.Contains(t, report, "unavailable")
	assert.Contains(t, report, "fatal")
	assert.Contains(t, report, "permission denied")
	assert.Contains(t, report, "1 of 3 candidate(s) available")
}

func TestSplitModels(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitModels(" a, ,b ,"))
	assert.Empty(t, splitModels(""))
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "hello world", oneLine("hello\n  world "))
	long := oneLine(string(bytes.Repeat([]byte("x"), 100)))
	assert.Len(t, long, 60)
}
