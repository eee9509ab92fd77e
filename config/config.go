package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the assistant.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Vector    VectorConfig    `yaml:"vector"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IngestConfig holds document ingestion configuration.
type IngestConfig struct {
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	ContextType string   `yaml:"context_type"`
}

// ChunkingConfig holds document chunking configuration.
type ChunkingConfig struct {
	// Mode selects "semantic" (section/paragraph/sentence aware, with
	// overlap) or "simple" (legacy word accumulation, no overlap). Some
	// embedding workflows rely on the simpler deterministic output.
	Mode         string `yaml:"mode"`
	ChunkSize    int    `yaml:"chunk_size"`
	Overlap      int    `yaml:"overlap"`
	MinChunkSize int    `yaml:"min_chunk_size"`
}

// RetrieveConfig holds the ranking and selection tunables. Weights are
// additive and need not sum to 1; the final score is unbounded.
type RetrieveConfig struct {
	TopK             int     `yaml:"top_k"`
	SelectionBudget  int     `yaml:"selection_budget"`
	MaxPerDoc        int     `yaml:"max_per_doc"`
	MaxFromMentioned int     `yaml:"max_from_mentioned"`
	MinSimilarity    float64 `yaml:"min_similarity"`
	SemanticWeight   float64 `yaml:"semantic_weight"`
	KeywordWeight    float64 `yaml:"keyword_weight"`
	MentionBoost     float64 `yaml:"mention_boost"`
	TopicBoost       float64 `yaml:"topic_boost"`
	DedupThreshold   float64 `yaml:"dedup_threshold"`
	UseDedup         bool    `yaml:"use_dedup"`
	UseExpansion     bool    `yaml:"use_expansion"`
}

// PromptConfig holds prompt assembly configuration.
type PromptConfig struct {
	// Domain selects the system preamble variant: "banking" (default),
	// "university" or "clinic".
	Domain             string `yaml:"domain"`
	ContextBudgetChars int    `yaml:"context_budget_chars"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig holds generation provider configuration.
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// VectorConfig selects the vector store backend.
type VectorConfig struct {
	Backend    string `yaml:"backend"` // "bolt", "qdrant"
	URL        string `yaml:"url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Collection string `yaml:"collection"`
}

// CacheConfig holds answer cache configuration.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
		},
		Chunking: ChunkingConfig{
			Mode:         "semantic",
			ChunkSize:    500,
			Overlap:      50,
			MinChunkSize: 100,
		},
		Retrieve: RetrieveConfig{
			TopK:             80,
			SelectionBudget:  15,
			MaxPerDoc:        6,
			MaxFromMentioned: 10,
			MinSimilarity:    0.12,
			SemanticWeight:   0.50,
			KeywordWeight:    0.15,
			MentionBoost:     0.25,
			TopicBoost:       0.15,
			DedupThreshold:   0.85,
			UseDedup:         true,
			UseExpansion:     true,
		},
		Prompt: PromptConfig{
			Domain:             "banking",
			ContextBudgetChars: 12000,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			APIKeyEnv: "OPENAI_API_KEY",
			BaseURL:   "",
			BatchSize: 100,
		},
		LLM: LLMConfig{
			BaseURL:        "http://localhost:11434",
			Model:          "llama3.1",
			TimeoutSeconds: 120,
		},
		Vector: VectorConfig{
			Backend:    "bolt",
			URL:        "http://localhost:6333",
			APIKeyEnv:  "QDRANT_API_KEY",
			Collection: "documents",
		},
		Cache: CacheConfig{
			MaxEntries: 256,
			TTLSeconds: 3600,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate rejects misconfiguration at construction time instead of
// tolerating it at query time.
func (c *Config) Validate() error {
	ch := c.Chunking
	if ch.Mode != "semantic" && ch.Mode != "simple" {
		return fmt.Errorf("chunking.mode must be \"semantic\" or \"simple\", got %q", ch.Mode)
	}
	if ch.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", ch.ChunkSize)
	}
	if ch.Overlap < 0 || ch.Overlap >= ch.ChunkSize {
		return fmt.Errorf("chunking.overlap must be in [0, chunk_size), got %d", ch.Overlap)
	}
	if ch.MinChunkSize < 0 {
		return fmt.Errorf("chunking.min_chunk_size must not be negative, got %d", ch.MinChunkSize)
	}

	r := c.Retrieve
	if r.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d", r.TopK)
	}
	if r.SelectionBudget <= 0 {
		return fmt.Errorf("retrieve.selection_budget must be positive, got %d", r.SelectionBudget)
	}
	if r.MaxPerDoc <= 0 || r.MaxFromMentioned <= 0 {
		return fmt.Errorf("retrieve per-document caps must be positive")
	}
	if r.MinSimilarity < 0 || r.MinSimilarity > 1 {
		return fmt.Errorf("retrieve.min_similarity must be in [0,1], got %g", r.MinSimilarity)
	}
	for name, w := range map[string]float64{
		"semantic_weight": r.SemanticWeight,
		"keyword_weight":  r.KeywordWeight,
		"mention_boost":   r.MentionBoost,
		"topic_boost":     r.TopicBoost,
	} {
		if w < 0 {
			return fmt.Errorf("retrieve.%s must not be negative, got %g", name, w)
		}
	}
	if r.DedupThreshold <= 0 || r.DedupThreshold > 1 {
		return fmt.Errorf("retrieve.dedup_threshold must be in (0,1], got %g", r.DedupThreshold)
	}

	if c.Prompt.ContextBudgetChars <= 0 {
		return fmt.Errorf("prompt.context_budget_chars must be positive, got %d", c.Prompt.ContextBudgetChars)
	}
	return nil
}

// Load loads configuration from a YAML file, applying defaults for any
// unset field, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// ragassist.yaml, then .ragassist/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragassist.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ragassist", "config.yaml")
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

// IndexDBPath returns the path to the local index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".ragassist", "index.db")
}

// EnsureDataDir ensures the .ragassist directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".ragassist"), 0755)
}
