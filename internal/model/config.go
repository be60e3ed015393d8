package model

import "time"

// Config is the single configuration surface for the engine.
// Resolved by viper with hierarchy: flags > QUIRE_* env > config file > defaults.
type Config struct {
	Corpus      CorpusConfig      `yaml:"corpus" json:"corpus"`
	Vocabulary  VocabularyConfig  `yaml:"vocabulary" json:"vocabulary"`
	Tables      TablesConfig      `yaml:"tables" json:"tables"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`

	// Strict promotes VOCABULARY_VIOLATION findings to FATAL
	Strict bool `yaml:"strict" json:"strict"`

	Verbose bool `yaml:"-" json:"-"`
}

// CorpusConfig locates the source documents
type CorpusConfig struct {
	// Roots are the corpus root paths scanned for documents
	Roots []string `yaml:"roots" json:"roots"`
	// Include are doublestar patterns relative to each root
	Include []string `yaml:"include" json:"include"`
	// Exclude patterns win over Include
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// VocabularyConfig is data, not code: it evolves without an engine rebuild
type VocabularyConfig struct {
	// Forbidden phrases imply structural necessity and are illegal in fit prose
	Forbidden []string `yaml:"forbidden" json:"forbidden"`
}

// TablesConfig controls derived table generation
type TablesConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// CacheConfig controls the parsed-document cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig sizes the parse worker pool
type ConcurrencyConfig struct {
	ParseWorkers int `yaml:"parse_workers" json:"parse_workers"`
}

// LLMConfig configures the optional findings digest. The digest never
// affects findings or exit codes.
type LLMConfig struct {
	Provider          string  `yaml:"provider" json:"provider"` // "" disables
	Model             string  `yaml:"model" json:"model"`
	APIKey            string  `yaml:"-" json:"-"` // Env only, never persisted
	BaseURL           string  `yaml:"base_url" json:"base_url"`
	MaxTokens         int     `yaml:"max_tokens" json:"max_tokens"`
	RequestsPerMinute float64 `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Roots:   []string{"."},
			Include: []string{"**/*.md", "**/*.txt"},
			Exclude: []string{"tables/**"},
		},
		Vocabulary: VocabularyConfig{
			Forbidden: DefaultForbiddenVocabulary(),
		},
		Tables: TablesConfig{
			Dir: "tables",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "", // Resolved to ~/.quire/cache at load time
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			ParseWorkers: 4,
		},
		LLM: LLMConfig{
			Provider:          "",
			MaxTokens:         1000,
			RequestsPerMinute: 20,
		},
		Strict: false,
	}
}

// DefaultForbiddenVocabulary lists phrases that state structural necessity.
// A fit may only use explanatory vocabulary ("explains", "accounts for",
// "supports"); these terms read an adequate fit as a requirement, which is
// the drift the vocabulary rule exists to catch.
func DefaultForbiddenVocabulary() []string {
	return []string{
		"governs",
		"determines",
		"necessitates",
		"defines legality",
		"is required for",
		"mandates",
		"must be generated by",
		"is the only mechanism",
	}
}
