package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/gaedke-construction/smartquote/internal/quote"
)

type legacyModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// LegacyGeminiGenerator uses the older generative-ai-go SDK. It is kept for
// deployments pinned to that client.
type LegacyGeminiGenerator struct {
	client *genai.Client
	model  func(modelID string) legacyModel
}

// NewLegacyGeminiGenerator creates a generative-ai-go client for apiKey.
func NewLegacyGeminiGenerator(ctx context.Context, apiKey string) (*LegacyGeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}
	return &LegacyGeminiGenerator{
		client: client,
		model: func(modelID string) legacyModel {
			return client.GenerativeModel(modelID)
		},
	}, nil
}

// Generate sends prompt to modelID and concatenates the text parts of the
// first candidate.
func (g *LegacyGeminiGenerator) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	resp, err := g.model(modelID).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return "", unavailable("gemini", modelID, err)
		}
		return "", fmt.Errorf("llm: gemini completion failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("llm: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("llm: gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return strings.TrimSpace(text.String()), nil
}

// Close releases resources held by the Gemini client.
func (g *LegacyGeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

var _ quote.Generator = (*LegacyGeminiGenerator)(nil)
