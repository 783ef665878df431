package advisorbot

import (
	"fmt"

	"github.com/spf13/viper"
)

type ModelConfig struct {
	Generative  string  `json:"generative"`
	Embedding   string  `json:"embedding"`
	Reranker    string  `json:"reranker"`
	Temperature float64 `json:"temperature"`
}

// RetrievalConfig holds the query-time retrieval knobs.
//
// ScoreThreshold and FallbackFloor are hand-tuned against the current
// corpus and should be recalibrated when the indexed documents change
// substantially.
type RetrievalConfig struct {
	// InitialK is how many passages each store returns before reranking.
	InitialK int `json:"initial_k"`
	// FinalK caps the number of passages used as generation context.
	FinalK int `json:"final_k"`
	// ScoreThreshold is the minimum rerank score for a passage to be kept.
	ScoreThreshold float64 `json:"score_threshold"`
	// FallbackFloor is the absolute minimum score for the single best
	// passage to be kept when everything falls below ScoreThreshold.
	FallbackFloor float64 `json:"fallback_floor"`
	// DedupeByTitle drops cross-store passages sharing a title before
	// reranking.
	DedupeByTitle bool `json:"dedupe_by_title"`
}

func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		InitialK:       10,
		FinalK:         5,
		ScoreThreshold: 0.40,
		FallbackFloor:  0.20,
		DedupeByTitle:  false,
	}
}

func (c RetrievalConfig) Validate() error {
	if c.InitialK <= 0 {
		return fmt.Errorf("initial_k must be positive, got %d", c.InitialK)
	}
	if c.FinalK <= 0 {
		return fmt.Errorf("final_k must be positive, got %d", c.FinalK)
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return fmt.Errorf("score_threshold must be between 0 and 1, got %v", c.ScoreThreshold)
	}
	if c.FallbackFloor < 0 || c.FallbackFloor > c.ScoreThreshold {
		return fmt.Errorf("fallback_floor must be between 0 and score_threshold, got %v", c.FallbackFloor)
	}
	return nil
}

type Config struct {
	Experiment       string          `json:"experiment"`
	Model            ModelConfig     `json:"model"`
	Retrieval        RetrievalConfig `json:"retrieval"`
	PromptTemplate   string          `json:"prompt_template"`
	ExampleQuestions []string        `json:"example_questions"`
}

func (c Config) Validate() error {
	if err := c.Retrieval.Validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model temperature must be between 0 and 2, got %v", c.Model.Temperature)
	}
	return nil
}

// Describe returns a short description of the configured pipeline for
// report metadata.
func (c Config) Describe() string {
	return fmt.Sprintf("Hybrid (multi-store) + rerank, threshold=%.2f, floor=%.2f",
		c.Retrieval.ScoreThreshold, c.Retrieval.FallbackFloor)
}

// FromViper decodes configuration from an already-read viper instance,
// applying documented defaults for unset keys.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("model.generative", "gemini-2.0-flash")
	v.SetDefault("model.embedding", "sentence-transformers/all-mpnet-base-v2")
	v.SetDefault("model.reranker", "cross-encoder/ms-marco-MiniLM-L-12-v2")
	v.SetDefault("model.temperature", 0.1)

	defaults := DefaultRetrievalConfig()
	v.SetDefault("retrieval.initial_k", defaults.InitialK)
	v.SetDefault("retrieval.final_k", defaults.FinalK)
	v.SetDefault("retrieval.score_threshold", defaults.ScoreThreshold)
	v.SetDefault("retrieval.fallback_floor", defaults.FallbackFloor)
	v.SetDefault("retrieval.dedupe_by_title", defaults.DedupeByTitle)

	v.SetDefault("prompt_template", DefaultPromptTemplate)

	cfg := Config{
		Experiment: v.GetString("experiment"),
		Model: ModelConfig{
			Generative:  v.GetString("model.generative"),
			Embedding:   v.GetString("model.embedding"),
			Reranker:    v.GetString("model.reranker"),
			Temperature: v.GetFloat64("model.temperature"),
		},
		Retrieval: RetrievalConfig{
			InitialK:       v.GetInt("retrieval.initial_k"),
			FinalK:         v.GetInt("retrieval.final_k"),
			ScoreThreshold: v.GetFloat64("retrieval.score_threshold"),
			FallbackFloor:  v.GetFloat64("retrieval.fallback_floor"),
			DedupeByTitle:  v.GetBool("retrieval.dedupe_by_title"),
		},
		PromptTemplate:   v.GetString("prompt_template"),
		ExampleQuestions: v.GetStringSlice("example_questions"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
