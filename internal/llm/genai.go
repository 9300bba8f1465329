package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/gaedke-construction/smartquote/internal/quote"
)

type genaiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	List(ctx context.Context, config *genai.ListModelsConfig) (genai.Page[genai.Model], error)
}

// GenAIGenerator calls the Gemini API through the google.golang.org/genai SDK.
type GenAIGenerator struct {
	models genaiModels
}

// NewGenAIGenerator creates a Gemini API client for apiKey.
func NewGenAIGenerator(ctx context.Context, apiKey string) (*GenAIGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create genai client: %w", err)
	}
	return &GenAIGenerator{models: client.Models}, nil
}

func newGenAIGenerator(models genaiModels) *GenAIGenerator {
	return &GenAIGenerator{models: models}
}

// Generate sends prompt as a single user turn to modelID.
func (g *GenAIGenerator) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, modelID, genai.Text(prompt), nil)
	if err != nil {
		if isGenAIModelMissing(err) {
			return "", unavailable("genai", modelID, err)
		}
		return "", fmt.Errorf("llm: genai generate with %s: %w", modelID, err)
	}
	if resp == nil {
		return "", errors.New("llm: genai returned no response")
	}
	return resp.Text(), nil
}

func isGenAIModelMissing(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Status == "NOT_FOUND"
	}
	return false
}

// ListModels returns every model visible to the API key, following pagination.
func (g *GenAIGenerator) ListModels(ctx context.Context) ([]ModelInfo, error) {
	page, err := g.models.List(ctx, &genai.ListModelsConfig{PageSize: 100})
	if err != nil {
		return nil, fmt.Errorf("llm: genai list models: %w", err)
	}

	out := []ModelInfo{}
	for {
		for _, m := range page.Items {
			if m == nil {
				continue
			}
			out = append(out, ModelInfo{
				Name:             m.Name,
				DisplayName:      m.DisplayName,
				SupportedActions: m.SupportedActions,
			})
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("llm: genai list models: %w", err)
		}
	}
}

var (
	_ quote.Generator = (*GenAIGenerator)(nil)
	_ ModelLister     = (*GenAIGenerator)(nil)
)
