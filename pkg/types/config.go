package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "synoptic/1.0").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries of rate-limited or failed
	// requests before giving up (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BatchSize is the page size per request (default 100, capped at 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxBatches is the number of pages fetched per expanded query (default 10).
	MaxBatches int `json:"max_batches" yaml:"max_batches"`

	// MinCitations drops papers cited fewer times. arXiv reports no counts.
	MinCitations int `json:"min_citations" yaml:"min_citations"`

	// MinYear and MaxYear bound the publication year; zero means unbounded.
	MinYear int `json:"min_year,omitempty" yaml:"min_year,omitempty"`
	MaxYear int `json:"max_year,omitempty" yaml:"max_year,omitempty"`

	// RequestDelay is the minimum spacing between API requests (default 3s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// OutputDir is the folder receiving per-query CSVs (default "results").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// FilterConfig holds settings shared by the regex and AI filter runs.
type FilterConfig struct {
	// WorkDir is the root under which output folders are created and
	// sibling runs are discovered (default ".").
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Workers is the size of the classification worker pool (default NumCPU).
	Workers int `json:"workers" yaml:"workers"`

	// MinTextLength rejects documents whose extracted text is shorter (default 10).
	MinTextLength int `json:"min_text_length" yaml:"min_text_length"`

	// CrossValidate runs the comparison against a sibling run when true.
	CrossValidate bool `json:"cross_validate" yaml:"cross_validate"`
}

// AIConfig holds settings for the LLM relevance judge.
type AIConfig struct {
	// BaseURL is an OpenAI-compatible endpoint (e.g. "http://localhost:11434/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier (e.g. "qwen2.5:1.5b").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key; local servers accept any value.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the reply length (default 5).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// LoggingConfig selects the diagnostic logger output.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`

	// Output is "stderr", "stdout", or a file path.
	Output string `json:"output" yaml:"output"`
}

// StatsConfig holds settings for result analysis.
type StatsConfig struct {
	// LogDir is the root of the per-folder report directories (default "log").
	LogDir string `json:"log_dir" yaml:"log_dir"`

	// Top is the number of entries printed per table (default 5).
	Top int `json:"top" yaml:"top"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	Filter  FilterConfig  `json:"filter" yaml:"filter"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Stats   StatsConfig   `json:"stats" yaml:"stats"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}
