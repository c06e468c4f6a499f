package model

import "time"

// Config is the complete verity configuration
type Config struct {
	State    StateConfig    `json:"state" yaml:"state"`
	Review   ReviewConfig   `json:"review" yaml:"review"`
	Dispatch DispatchConfig `json:"dispatch" yaml:"dispatch"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Output   OutputConfig   `json:"output" yaml:"output"`
}

// StateConfig controls persisted state access
type StateConfig struct {
	Dir      string        `json:"dir" yaml:"dir"`             // State directory (batch, brief, manifest files)
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"` // TTL for cached stage-boundary reads
}

// ReviewConfig controls the verification loop
type ReviewConfig struct {
	Phase          string `json:"phase" yaml:"phase"`                     // Phase name keying the batch file
	IterationLimit int    `json:"iteration_limit" yaml:"iteration_limit"` // Hard cap on verification iterations
}

// DispatchConfig controls descriptor construction and the local runner
type DispatchConfig struct {
	TargetRole        string  `json:"target_role" yaml:"target_role"`                 // Executor role named in descriptors
	Workers           int     `json:"workers" yaml:"workers"`                         // Local runner concurrency
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"` // Per-role dispatch rate
	BurstSize         int     `json:"burst_size" yaml:"burst_size"`
}

// LLMConfig controls the optional findings summarizer.
// The summary never affects the verdict.
type LLMConfig struct {
	Provider  string `json:"provider" yaml:"provider"` // openai, ollama, or "" (disabled)
	Model     string `json:"model" yaml:"model"`
	APIKey    string `json:"-" yaml:"-"` // From environment only, never persisted
	BaseURL   string `json:"base_url" yaml:"base_url"`
	Timeout   int    `json:"timeout" yaml:"timeout"` // Seconds
	MaxTokens int    `json:"max_tokens" yaml:"max_tokens"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool   `json:"verbose" yaml:"verbose"`
	Format  string `json:"format" yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		State: StateConfig{
			Dir:      ".verity-state",
			CacheTTL: 30 * time.Second,
		},
		Review: ReviewConfig{
			Phase:          "impl-code",
			IterationLimit: IterationLimit,
		},
		Dispatch: DispatchConfig{
			TargetRole:        "quality-reviewer",
			Workers:           4,
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 1000,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}
