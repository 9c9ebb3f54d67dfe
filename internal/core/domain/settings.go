package domain

import (
	"fmt"
	"time"
)

// Default settings values.
const (
	DefaultMaxThreads       = 50
	DefaultFetchDelay       = time.Second
	DefaultFetchConcurrency = 4
	DefaultFetchRetries     = 3
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 200
	DefaultTopK             = 5
	DefaultRequestTimeout   = 60 * time.Second
	DefaultMaxTokens        = 2000
	DefaultTemperature      = 0.7
	DefaultPromptBudget     = 12000
	DefaultEmbeddingModel   = "text-embedding-3-small"
	DefaultLLMModel         = "gpt-4o-mini"
)

// Settings is the validated configuration consumed by the core.
// It is built once at startup from the config store and environment;
// services receive it by value, never through process-wide state.
type Settings struct {
	// DataPath is the JSONL dataset location.
	DataPath string

	// IndexPath is the vector index database location.
	IndexPath string

	// BaseURL is the forum site root.
	BaseURL string

	// MaxThreads caps listing discovery per scrape run.
	MaxThreads int

	// FetchDelay is the pause between consecutive page fetches.
	FetchDelay time.Duration

	// FetchConcurrency bounds the detail-fetch worker pool.
	FetchConcurrency int

	// FetchRetries bounds retry attempts per fetch/embed/generate call.
	FetchRetries int

	// ChunkSize is the chunk window width in runes.
	ChunkSize int

	// ChunkOverlap is the rune overlap between consecutive chunks.
	ChunkOverlap int

	// TopK is the default retrieval depth per query.
	TopK int

	// RequestTimeout bounds each query's embed and generate calls.
	RequestTimeout time.Duration

	// APIKey authenticates against the model provider.
	APIKey string

	// EmbeddingModel names the embedding model.
	EmbeddingModel string

	// EmbeddingDimensions is the expected vector width. When zero the
	// model default is used.
	EmbeddingDimensions int

	// LLMModel names the completion model.
	LLMModel string

	// MaxTokens caps completion length.
	MaxTokens int

	// Temperature controls completion randomness.
	Temperature float64

	// PromptBudget caps the composed prompt length in runes.
	PromptBudget int
}

// DefaultSettings returns settings with every tunable at its default.
func DefaultSettings() Settings {
	return Settings{
		DataPath:         "forum_data.jsonl",
		BaseURL:          "https://www.agnoshealth.com",
		MaxThreads:       DefaultMaxThreads,
		FetchDelay:       DefaultFetchDelay,
		FetchConcurrency: DefaultFetchConcurrency,
		FetchRetries:     DefaultFetchRetries,
		ChunkSize:        DefaultChunkSize,
		ChunkOverlap:     DefaultChunkOverlap,
		TopK:             DefaultTopK,
		RequestTimeout:   DefaultRequestTimeout,
		EmbeddingModel:   DefaultEmbeddingModel,
		LLMModel:         DefaultLLMModel,
		MaxTokens:        DefaultMaxTokens,
		Temperature:      DefaultTemperature,
		PromptBudget:     DefaultPromptBudget,
	}
}

// Validate checks settings consistency. Violations are fatal at
// startup and wrap ErrConfiguration.
func (s *Settings) Validate() error {
	if s.DataPath == "" {
		return fmt.Errorf("%w: data path is required", ErrConfiguration)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrConfiguration)
	}
	if s.MaxThreads <= 0 {
		return fmt.Errorf("%w: max threads must be positive", ErrConfiguration)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrConfiguration)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, chunk size)", ErrConfiguration)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrConfiguration)
	}
	if s.FetchConcurrency <= 0 {
		return fmt.Errorf("%w: fetch concurrency must be positive", ErrConfiguration)
	}
	if s.FetchRetries < 0 {
		return fmt.Errorf("%w: fetch retries must not be negative", ErrConfiguration)
	}
	if s.EmbeddingDimensions < 0 {
		return fmt.Errorf("%w: embedding dimensions must not be negative", ErrConfiguration)
	}
	return nil
}
