package mainconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/gaedke-construction/smartquote/internal/config"
	"github.com/gaedke-construction/smartquote/internal/llm"
	"github.com/gaedke-construction/smartquote/internal/quote"
)

const bedrockMaxTokens = 1024

// NewGenerator builds the model provider named by LLM_PROVIDER. A nil
// generator with a nil error means no credentials are configured. The
// returned lister is nil for providers that cannot enumerate models.
func NewGenerator(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config) (quote.Generator, llm.ModelLister, func(), error) {
	noop := func() {}
	switch cfg.LLMProvider {
	case "bedrock":
		return llm.NewBedrockGenerator(bedrockruntime.NewFromConfig(awsCfg), bedrockMaxTokens), nil, noop, nil
	case "gemini-legacy":
		if !cfg.HasGeminiKey() {
			return nil, nil, noop, nil
		}
		gen, err := llm.NewLegacyGeminiGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, noop, err
		}
		return gen, nil, func() { _ = gen.Close() }, nil
	case "", "genai":
		if !cfg.HasGeminiKey() {
			return nil, nil, noop, nil
		}
		gen, err := llm.NewGenAIGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, noop, err
		}
		return gen, gen, noop, nil
	default:
		return nil, nil, noop, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
