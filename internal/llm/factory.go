package llm

import (
	"fmt"
	"strings"

	"github.com/quireproject/quire/internal/model"
)

// NewProvider creates a provider from configuration. An empty provider name
// means digests are disabled and both return values are nil.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", cfg.Provider)
	}
}
