package advisorbot

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Outcome string

const (
	// OutcomeAnswered means the generator produced an answer backed by at
	// least one passage.
	OutcomeAnswered Outcome = "ANSWERED"
	// OutcomeNoInformation means nothing relevant survived retrieval and
	// filtering; no generation call was made.
	OutcomeNoInformation Outcome = "NO_INFORMATION"
)

// NoInformationAnswer is the fixed user-visible response when no relevant
// passage survives filtering.
const NoInformationAnswer = "I couldn't find relevant information in the database."

const (
	StageRetrieval  = "retrieval"
	StageRerank     = "rerank"
	StageGeneration = "generation"
	StageTotal      = "total"
)

// Timings maps stage names to elapsed seconds. All four stages are always
// present; stages that did not run report zero.
type Timings map[string]float64

func newTimings() Timings {
	return Timings{
		StageRetrieval:  0,
		StageRerank:     0,
		StageGeneration: 0,
		StageTotal:      0,
	}
}

// Debug carries retrieval diagnostics, collected on every call.
type Debug struct {
	TotalRetrieved int     `json:"total_retrieved"`
	AfterRerank    int     `json:"after_rerank"`
	Threshold      float64 `json:"threshold"`
}

// AnswerRecord is the result of one pipeline invocation.
type AnswerRecord struct {
	Outcome Outcome  `json:"outcome"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Timings Timings  `json:"timings"`
	Debug   Debug    `json:"debug"`
}

// Answer runs the retrieval-rerank-generation pipeline for one question.
// Topics, when given, filter retrieval on stores that support metadata
// filtering; other stores ignore them. Errors from collaborators are
// propagated; callers should surface a degraded response rather than crash.
func (b *advisorBot) Answer(ctx context.Context, question string, topics ...string) (*AnswerRecord, error) {
	var (
		timings    = newTimings()
		startTotal = time.Now()
	)

	b.logger.Sugar().With("question", question, "topics", topics).Info("answering question")

	startRetrieval := time.Now()
	candidates, err := b.retrieve(ctx, question, topics)
	timings[StageRetrieval] = time.Since(startRetrieval).Seconds()
	if err != nil {
		return nil, fmt.Errorf("retrieving passages: %w", err)
	}

	if b.retrieval.DedupeByTitle {
		candidates = dedupeByTitle(candidates)
	}

	debug := Debug{
		TotalRetrieved: len(candidates),
		Threshold:      b.retrieval.ScoreThreshold,
	}

	if len(candidates) == 0 {
		timings[StageTotal] = time.Since(startTotal).Seconds()
		return b.noInformation(timings, debug), nil
	}

	startRerank := time.Now()
	best, err := b.rerank(ctx, question, candidates)
	timings[StageRerank] = time.Since(startRerank).Seconds()
	if err != nil {
		return nil, fmt.Errorf("reranking passages: %w", err)
	}

	debug.AfterRerank = len(best)

	if len(best) == 0 {
		timings[StageTotal] = time.Since(startTotal).Seconds()
		return b.noInformation(timings, debug), nil
	}

	startGeneration := time.Now()
	answer, err := b.generate(ctx, question, best)
	timings[StageGeneration] = time.Since(startGeneration).Seconds()
	if err != nil {
		return nil, fmt.Errorf("calling generative model: %w", err)
	}

	timings[StageTotal] = time.Since(startTotal).Seconds()

	return &AnswerRecord{
		Outcome: OutcomeAnswered,
		Answer:  answer,
		Sources: sourcesFromPassages(best),
		Timings: timings,
		Debug:   debug,
	}, nil
}

// retrieve fans out to every loaded store in fixed order and concatenates
// results without interleaving or content deduplication. An absent store
// is an empty result source, not an error.
func (b *advisorBot) retrieve(ctx context.Context, question string, topics []string) ([]Passage, error) {
	var merged []Passage
	for _, store := range b.stores {
		if store == nil {
			continue
		}

		var (
			passages []Passage
			err      error
		)
		if ts, ok := store.(TopicSearcher); ok && len(topics) > 0 {
			passages, err = ts.SearchPassagesByTopics(ctx, question, b.retrieval.InitialK, topics)
		} else {
			passages, err = store.SearchPassages(ctx, question, b.retrieval.InitialK)
		}
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", store.Name(), err)
		}

		merged = append(merged, passages...)
	}

	b.logger.Sugar().Infof("retrieved %d candidate passages", len(merged))

	return merged, nil
}

// rerank scores the merged candidates, applies the threshold filter with
// the single-survivor fallback, and returns up to FinalK passages in
// descending score order with scores attached to their metadata.
func (b *advisorBot) rerank(ctx context.Context, question string, candidates []Passage) ([]Passage, error) {
	rerankCandidates := make([]RerankCandidate, 0, len(candidates))
	for i, aPassage := range candidates {
		rerankCandidates = append(rerankCandidates, RerankCandidate{
			ID:       i,
			Text:     aPassage.Content,
			Metadata: aPassage.Metadata,
		})
	}

	scores, err := b.reranker.Rerank(ctx, question, rerankCandidates)
	if err != nil {
		return nil, err
	}

	scored, err := matchScores(candidates, scores)
	if err != nil {
		return nil, err
	}

	kept := filterByScore(scored, b.retrieval.ScoreThreshold, b.retrieval.FallbackFloor)
	sortByScore(kept)
	kept = truncate(kept, b.retrieval.FinalK)

	best := make([]Passage, 0, len(kept))
	for _, sp := range kept {
		aPassage := sp.passage
		if aPassage.Metadata == nil {
			aPassage.Metadata = Metadata{}
		}
		aPassage.Metadata["score"] = sp.score
		best = append(best, aPassage)
	}

	return best, nil
}

func (b *advisorBot) generate(ctx context.Context, question string, passages []Passage) (string, error) {
	contexts := make([]string, 0, len(passages))
	for _, aPassage := range passages {
		contexts = append(contexts, aPassage.Content)
	}

	prompt := RenderPrompt(b.template, strings.Join(contexts, "\n\n"), question)

	return b.generative.Generate(ctx, prompt)
}

// RenderPrompt substitutes {context} and {question} into a prompt template.
func RenderPrompt(template, contextText, question string) string {
	return strings.NewReplacer(
		"{context}", contextText,
		"{question}", question,
	).Replace(template)
}

func (b *advisorBot) noInformation(timings Timings, debug Debug) *AnswerRecord {
	return &AnswerRecord{
		Outcome: OutcomeNoInformation,
		Answer:  NoInformationAnswer,
		Sources: []Source{},
		Timings: timings,
		Debug:   debug,
	}
}
