package advisorbot

import (
	"fmt"
	"sort"
)

type scoredPassage struct {
	passage Passage
	score   float64
}

// matchScores pairs rerank scores back to the merged candidate sequence by
// positional ID. Scores may arrive in any order; an ID outside the
// candidate range is a reranker contract violation.
func matchScores(candidates []Passage, scores []RerankScore) ([]scoredPassage, error) {
	scored := make([]scoredPassage, 0, len(scores))
	for _, s := range scores {
		if s.ID < 0 || s.ID >= len(candidates) {
			return nil, fmt.Errorf("rerank score references unknown candidate: %d", s.ID)
		}
		scored = append(scored, scoredPassage{
			passage: candidates[s.ID],
			score:   s.Score,
		})
	}
	return scored, nil
}

// filterByScore keeps every candidate scoring above threshold. When that
// discards all candidates but the single best one still clears floor, that
// one candidate is kept as a last-resort answer source. The two-tier policy
// prefers a weak but plausible source over a hard "no answer", yet never
// presents a truly irrelevant passage.
func filterByScore(scored []scoredPassage, threshold, floor float64) []scoredPassage {
	kept := make([]scoredPassage, 0, len(scored))
	for _, sp := range scored {
		if sp.score > threshold {
			kept = append(kept, sp)
		}
	}

	if len(kept) == 0 && len(scored) > 0 {
		best := scored[0]
		for _, sp := range scored[1:] {
			if sp.score > best.score {
				best = sp
			}
		}
		if best.score > floor {
			kept = append(kept, best)
		}
	}

	return kept
}

// sortByScore orders candidates by descending score. The sort is stable so
// that candidates with equal scores keep their merged retrieval order,
// which keeps repeated queries deterministic.
func sortByScore(scored []scoredPassage) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
}

func truncate(scored []scoredPassage, limit int) []scoredPassage {
	if limit > 0 && len(scored) > limit {
		return scored[:limit]
	}
	return scored
}

// dedupeByTitle drops later passages whose title was already seen, keeping
// the first occurrence in merged store order. Passages without a title are
// never deduplicated.
func dedupeByTitle(passages []Passage) []Passage {
	seen := make(map[string]struct{}, len(passages))
	deduped := make([]Passage, 0, len(passages))
	for _, p := range passages {
		title := p.Metadata.String("title")
		if title == "" {
			deduped = append(deduped, p)
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped
}
