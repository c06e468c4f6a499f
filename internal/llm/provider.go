// Package llm provides an optional natural-language summary of a
// verification run. The summary is presentation only: it is generated
// after aggregation and never affects the verdict.
package llm

import (
	"context"
	"fmt"

	"github.com/opsverity/verity/internal/model"
	"github.com/opsverity/verity/internal/verdict"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary of the verdict result
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for summarization
type SummarizeRequest struct {
	// Phase and Iteration identify the run being summarized
	Phase     string
	Iteration int

	// Result is the aggregated verdict to summarize
	Result verdict.Result

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "" (disabled). OpenAI-compatible servers
	// (e.g. Ollama) work via BaseURL.
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}

// BuildPrompt constructs the default summarization prompt. The model is
// constrained to the findings it is given; it must not speculate about
// causes or assert anything beyond the recorded outcomes.
func BuildPrompt(req SummarizeRequest) string {
	r := req.Result
	prompt := fmt.Sprintf(`You are summarizing a verification run. The verdict is already decided; your summary describes it and MUST NOT second-guess it.

RULES:
1. Reference ONLY the findings listed below. Do not infer or speculate about causes.
2. If there are no findings, say the run passed cleanly under the active severity gate.
3. Never soften a FAIL or harden a PASS.

Run:
- Phase: %s
- Iteration: %d
- Verdict: %s
- Blocking severities: %s
- Items: %d total, %d passed, %d failed, %d skipped, %d non-blocking

Findings:
`, req.Phase, req.Iteration, r.Verdict, r.BlockingCSV, r.Total, r.Passed, r.Failed, r.Skipped, r.NonBlocking)

	if len(r.Findings) == 0 {
		prompt += "(none)\n"
	}
	for _, f := range r.Findings {
		prompt += fmt.Sprintf("- %s [%s] step=%s: %s\n", f.ItemID, f.Severity, f.Step, f.Note)
	}

	prompt += "\nProvide a 3-4 sentence summary for the engineer reading the report."
	return prompt
}
