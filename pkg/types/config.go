package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout bounds a single external lookup. A lookup that exceeds it is
	// treated as failed and its value as unknown.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "messai-quality/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CitationBackend selects the bibliographic API used for citation counts.
type CitationBackend string

const (
	CitationCrossRef CitationBackend = "crossref"
	CitationOpenAlex CitationBackend = "openalex"
	CitationNone     CitationBackend = "none"
)

// EnrichmentConfig holds settings for external enrichment during impact scoring.
type EnrichmentConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the citation source: crossref, openalex, or none.
	Backend CitationBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Mailto is sent to CrossRef and OpenAlex for polite-pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty" mapstructure:"mailto"`

	// MaxRetries bounds retries on HTTP 429 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ScoringConfig holds settings for the scoring tables.
type ScoringConfig struct {
	// TablesFile is an optional YAML file replacing the built-in keyword,
	// phrase, journal, and source tables.
	TablesFile string `json:"tables_file,omitempty" yaml:"tables_file,omitempty" mapstructure:"tables_file"`

	// RecentYears is the age limit for the is-recent signal (default 5).
	RecentYears int `json:"recent_years" yaml:"recent_years" mapstructure:"recent_years"`
}

// BatchConfig holds settings for a batch scoring run.
type BatchConfig struct {
	// Limit caps the number of papers scored (0 means all).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// Delay is the fixed pause between consecutive papers (default 100ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// ReportFile is where the detailed JSON report is written.
	ReportFile string `json:"report_file" yaml:"report_file" mapstructure:"report_file"`

	// MetricsFile, when set, receives a Prometheus textfile with run metrics.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

// StoreConfig holds settings for the SQLite paper store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ExtractionConfig holds settings for Ollama metadata extraction.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the Ollama server base URL (default http://localhost:11434).
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Model is the Ollama model name (e.g. "llama3.1").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Limit caps the number of papers processed (0 means all).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// Delay is the pause between consecutive papers (default 500ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// Config groups all component configurations.
type Config struct {
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment" mapstructure:"enrichment"`
	Batch      BatchConfig      `json:"batch" yaml:"batch" mapstructure:"batch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
}
