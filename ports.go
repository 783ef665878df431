package advisorbot

import (
	"context"
)

// VectorStore is a gateway to one pre-built vector index. Implementations
// must return an empty slice, not an error, when no index is loaded.
type VectorStore interface {
	Name() string
	SearchPassages(ctx context.Context, query string, limit int) ([]Passage, error)
}

// TopicSearcher is implemented by vector stores that support filtering by
// topic metadata. Stores without this capability ignore topic filters.
type TopicSearcher interface {
	SearchPassagesByTopics(ctx context.Context, query string, limit int, topics []string) ([]Passage, error)
}

// PassageWriter is implemented by vector stores that support ingestion.
type PassageWriter interface {
	SavePassages(ctx context.Context, passages []Passage, vectors []Vector) error
}

type RerankCandidate struct {
	// ID is the candidate's position in the merged retrieval sequence.
	// Rerankers must echo it back so scores can be matched to candidates
	// even when multiple candidates share identical metadata.
	ID       int
	Text     string
	Metadata Metadata
}

type RerankScore struct {
	ID    int
	Score float64
}

// Reranker re-scores retrieved candidates against the question with a more
// precise relevance model.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, query string, candidates []RerankCandidate) ([]RerankScore, error)
}

// Generator produces an answer from a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder encodes passage contents as vectors. Used by store adapters and
// the ingest path; the query-time pipeline never embeds directly.
type Embedder interface {
	Name() string
	EmbedPassages(ctx context.Context, passages []Passage) ([]Vector, error)
	EmbedContent(ctx context.Context, content string) (Vector, error)
}

type Vector []float32

// ScoreResult carries aggregate and per-row values from a scoring backend.
// Values are loosely typed because scoring backends do not agree on numeric
// representations; the evaluation harness normalizes them before
// serialization.
type ScoreResult struct {
	Metrics map[string]any
	Rows    []map[string]any
}

// Scorer grades a batch of answered test cases.
type Scorer interface {
	Score(ctx context.Context, rows []EvaluationRow) (*ScoreResult, error)
}

// FeedbackSink is an append-only log of answer feedback.
type FeedbackSink interface {
	Append(ctx context.Context, feedback *Feedback) error
}

type Store interface {
	SaveFeedback(ctx context.Context, feedback ...*Feedback) error
	ListFeedback(ctx context.Context, limit int) ([]*Feedback, error)
	SaveEvaluationRun(ctx context.Context, run *EvaluationRun) error
	FindEvaluationRun(ctx context.Context, id RunID) (*EvaluationRun, error)
	ListEvaluationRuns(ctx context.Context, limit int) ([]*EvaluationRun, error)
}
