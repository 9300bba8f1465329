package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/gaedke-construction/smartquote/internal/quote"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockGenerator sends prompts through the Bedrock Converse API.
type BedrockGenerator struct {
	api       bedrockConverseAPI
	maxTokens int32
}

func NewBedrockGenerator(api bedrockConverseAPI, maxTokens int32) *BedrockGenerator {
	if api == nil {
		panic("llm: bedrock converse client cannot be nil")
	}
	return &BedrockGenerator{api: api, maxTokens: maxTokens}
}

// Generate sends prompt as a single user message to modelID.
func (g *BedrockGenerator) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	if strings.TrimSpace(modelID) == "" {
		return "", errors.New("llm: bedrock model id is required")
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(modelID),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: prompt}},
		}},
	}
	if g.maxTokens > 0 {
		input.InferenceConfig = &brtypes.InferenceConfiguration{MaxTokens: aws.Int32(g.maxTokens)}
	}

	out, err := g.api.Converse(ctx, input)
	if err != nil {
		if isBedrockModelMissing(err) {
			return "", unavailable("bedrock", modelID, err)
		}
		return "", fmt.Errorf("llm: bedrock converse with %s: %w", modelID, err)
	}
	return bedrockOutputText(out)
}

func isBedrockModelMissing(err error) bool {
	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "ResourceNotFoundException" {
			return true
		}
		// An unknown model id is reported as a validation error.
		return apiErr.ErrorCode() == "ValidationException" &&
			strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "model identifier is invalid")
	}
	return false
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("llm: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("llm: bedrock response did not include a message output")
	}

	var b strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(textBlock.Value)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("llm: bedrock response contained no text content blocks")
	}
	return text, nil
}

var _ quote.Generator = (*BedrockGenerator)(nil)
