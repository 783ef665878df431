package hugot

import (
	"context"
	"fmt"

	"github.com/campusbot/advisorbot"
)

func (a *Adapter) EmbedPassages(ctx context.Context, passages []advisorbot.Passage) ([]advisorbot.Vector, error) {
	if a.embedding == nil {
		return nil, fmt.Errorf("embedding pipeline not configured")
	}

	sentences := make([]string, 0, len(passages))
	for _, passage := range passages {
		sentences = append(sentences, passage.Content)
	}

	embeddingResult, err := a.embedding.RunPipeline(sentences)
	if err != nil {
		return nil, err
	}

	embeddings := embeddingResult.Embeddings

	if len(embeddings) != len(passages) {
		return nil, fmt.Errorf("embedded batch size mismatch")
	}

	vectors := make([]advisorbot.Vector, 0, len(embeddings))

	for i := range embeddings {
		vectors = append(vectors, embeddings[i])
	}

	return vectors, nil
}

func (a *Adapter) EmbedContent(ctx context.Context, content string) (advisorbot.Vector, error) {
	if a.embedding == nil {
		return advisorbot.Vector{}, fmt.Errorf("embedding pipeline not configured")
	}

	embeddingResult, err := a.embedding.RunPipeline([]string{content})
	if err != nil {
		return advisorbot.Vector{}, err
	}
	return embeddingResult.Embeddings[0], nil
}
