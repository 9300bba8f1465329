// Package llm adapts hosted text-generation providers to quote.Generator.
// Each adapter reports unknown or unsupported model identifiers by wrapping
// quote.ErrModelUnavailable so the gateway can move to the next candidate.
package llm

import (
	"context"
	"fmt"

	"github.com/gaedke-construction/smartquote/internal/quote"
)

// ModelInfo describes a model visible to the configured credentials.
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName,omitempty"`
	SupportedActions []string `json:"supportedActions,omitempty"`
}

// ModelLister lists the models a provider exposes.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

func unavailable(provider, modelID string, err error) error {
	return fmt.Errorf("llm: %s model %s: %w: %w", provider, modelID, quote.ErrModelUnavailable, err)
}
