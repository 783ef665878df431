package hugot

import (
	"context"
	"fmt"

	"github.com/campusbot/advisorbot"
)

// Rerank scores each candidate against the query with the cross encoder
// model. Query and candidate text are fed as a single sequence separated by
// the BERT separator token, which is how the ms-marco family of cross
// encoders expects its input pairs.
func (a *Adapter) Rerank(ctx context.Context, query string, candidates []advisorbot.RerankCandidate) ([]advisorbot.RerankScore, error) {
	if a.crossEncoder == nil {
		return nil, fmt.Errorf("cross encoder pipeline not configured")
	}

	if len(candidates) == 0 {
		return []advisorbot.RerankScore{}, nil
	}

	pairs := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		pairs = append(pairs, fmt.Sprintf("%s [SEP] %s", query, candidate.Text))
	}

	result, err := a.crossEncoder.RunPipeline(pairs)
	if err != nil {
		return nil, fmt.Errorf("calling cross encoder model: %w", err)
	}

	outputs := result.ClassificationOutputs
	if len(outputs) != len(candidates) {
		return nil, fmt.Errorf("scored batch size mismatch")
	}

	scores := make([]advisorbot.RerankScore, 0, len(candidates))
	for i, candidate := range candidates {
		if len(outputs[i]) == 0 {
			return nil, fmt.Errorf("no classification output for candidate %d", candidate.ID)
		}
		scores = append(scores, advisorbot.RerankScore{
			ID:    candidate.ID,
			Score: float64(outputs[i][0].Score),
		})
	}

	return scores, nil
}
