package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for lexis.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AnalysisConfig lists pipelines registered on top of the built-in ones.
type AnalysisConfig struct {
	Pipelines []PipelineConfig `yaml:"pipelines"`
}

// PipelineConfig describes one named tokenizer pipeline.
type PipelineConfig struct {
	Name      string         `yaml:"name"`
	Tokenizer string         `yaml:"tokenizer"` // "raw", "simple", "whitespace", "ja"
	Filters   []FilterConfig `yaml:"filters"`
}

// FilterConfig describes one filter stage. Which fields apply depends on Type.
type FilterConfig struct {
	Type      string   `yaml:"type"`                // "remove_long", "lowercase", "stemmer", "stopwords"
	Limit     int      `yaml:"limit,omitempty"`     // remove_long
	Language  string   `yaml:"language,omitempty"`  // stemmer, stopwords
	Algorithm string   `yaml:"algorithm,omitempty"` // stemmer: "snowball" or "porter"
	Words     []string `yaml:"words,omitempty"`     // stopwords
}

// IndexConfig holds indexing configuration.
type IndexConfig struct {
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	Tokenizer    string   `yaml:"tokenizer"`
	ChunkTokens  int      `yaml:"chunk_tokens"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	K1           float64  `yaml:"k1"`
	B            float64  `yaml:"b"`
	Workers      int      `yaml:"workers"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK              int     `yaml:"top_k"`
	PathBoostWeight   float64 `yaml:"path_boost_weight"`
	PhraseBoostWeight float64 `yaml:"phrase_boost_weight"`
	MMRLambda         float64 `yaml:"mmr_lambda"`
	DedupJaccard      float64 `yaml:"dedup_jaccard"`
	MinScoreThreshold float64 `yaml:"min_score_threshold"` // Filter results below this score (0 = disabled)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Includes:     []string{"**/*.md", "**/*.txt", "**/*.rst", "**/*.go", "**/*.py", "**/*.js", "**/*.ts", "**/*.java", "**/*.rs"},
			Excludes:     []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/.lexis/**", "**/dist/**", "**/build/**"},
			Tokenizer:    "en_stem",
			ChunkTokens:  256,
			ChunkOverlap: 32,
			K1:           1.2,
			B:            0.75,
			Workers:      4,
		},
		Retrieve: RetrieveConfig{
			TopK:              10,
			PathBoostWeight:   0.3,
			PhraseBoostWeight: 0.5,
			MMRLambda:         0.7,
			DedupJaccard:      0.9,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for lexis.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "lexis.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".lexis", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the parts of the config that cannot be repaired by defaults.
// Pipeline component names are checked when the pipelines are built.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Analysis.Pipelines))
	for i, p := range c.Analysis.Pipelines {
		if p.Name == "" {
			return fmt.Errorf("%w: analysis.pipelines[%d] has no name", ErrInvalidConfig, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: pipeline %q defined twice", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true
		if p.Tokenizer == "" {
			return fmt.Errorf("%w: pipeline %q has no tokenizer", ErrInvalidConfig, p.Name)
		}
	}
	if c.Index.Tokenizer == "" {
		return fmt.Errorf("%w: index.tokenizer is empty", ErrInvalidConfig)
	}
	if c.Index.ChunkTokens <= 0 {
		return fmt.Errorf("%w: index.chunk_tokens must be positive", ErrInvalidConfig)
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkTokens {
		return fmt.Errorf("%w: index.chunk_overlap must be in [0, chunk_tokens)", ErrInvalidConfig)
	}
	if c.Index.B < 0 || c.Index.B > 1 {
		return fmt.Errorf("%w: index.b must be in [0, 1]", ErrInvalidConfig)
	}
	if c.Retrieve.MMRLambda < 0 || c.Retrieve.MMRLambda > 1 {
		return fmt.Errorf("%w: retrieve.mmr_lambda must be in [0, 1]", ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// Pipeline returns the custom pipeline definition named name, if any.
func (c *Config) Pipeline(name string) (PipelineConfig, bool) {
	for _, p := range c.Analysis.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return PipelineConfig{}, false
}

// IndexDBPath returns the path to the index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".lexis", "index.db")
}

// EnsureDataDir ensures the .lexis directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".lexis"), 0755)
}
