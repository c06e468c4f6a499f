package llm

import (
	"context"
	"fmt"

	"github.com/opsverity/verity/internal/verdict"
)

// Summarizer wraps a provider with run-level configuration
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer from configuration. Returns a
// disabled summarizer (nil provider) when no provider is configured.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// Summarize generates a summary of the aggregated result. Called only
// after aggregation; the result is read-only input.
func (s *Summarizer) Summarize(ctx context.Context, phase string, iteration int, result verdict.Result) (*SummarizeResponse, error) {
	if !s.IsEnabled() {
		return nil, fmt.Errorf("LLM summarizer is not enabled")
	}

	return s.provider.Summarize(ctx, SummarizeRequest{
		Phase:     phase,
		Iteration: iteration,
		Result:    result,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
}
