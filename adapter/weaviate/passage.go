package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/campusbot/advisorbot"
)

func (a *Adapter) SavePassages(ctx context.Context, passages []advisorbot.Passage, vectors []advisorbot.Vector) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("passage count %d does not match vector count %d", len(passages), len(vectors))
	}

	// Convert our passages - along with their embedding vectors - into types
	// used by the Weaviate client library.
	objects := make([]*models.Object, len(passages))
	for i, passage := range passages {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("empty vector")
		}
		properties := map[string]any{
			"content": passage.Content,
			"title":   passage.Title(),
			"url":     passage.URL(),
		}
		if topic := passage.Metadata.String("topic"); topic != "" {
			properties["topic"] = topic
		}
		objects[i] = &models.Object{
			Class:      a.className,
			Properties: properties,
			Vector:     models.C11yVector(vectors[i]),
		}
	}

	// Store passages with embeddings in the Weaviate DB.
	_, err := a.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}

	a.logger.With("count", len(objects), "class", a.className).Debug("Stored objects in weaviate")
	return nil
}

func (a *Adapter) SearchPassages(ctx context.Context, query string, limit int) ([]advisorbot.Passage, error) {
	return a.search(ctx, query, nil, limit)
}

// SearchPassagesByTopics restricts the vector search to passages tagged with
// any of the given topics.
func (a *Adapter) SearchPassagesByTopics(ctx context.Context, query string, limit int, topics []string) ([]advisorbot.Passage, error) {
	return a.search(ctx, query, topics, limit)
}

func (a *Adapter) search(ctx context.Context, query string, topics []string, limit int) ([]advisorbot.Passage, error) {
	vector, err := a.embedder.EmbedContent(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	gql := a.client.GraphQL()
	nearVector := gql.NearVectorArgBuilder().WithVector([]float32(vector))

	builder := gql.Get().
		WithNearVector(nearVector).
		WithClassName(a.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "title"},
			graphql.Field{Name: "url"},
			graphql.Field{Name: "topic"},
		).
		WithLimit(limit)

	if len(topics) > 0 {
		filter := filters.Where()
		filter.WithOperator(filters.ContainsAny)
		filter.WithPath([]string{"topic"})
		filter.WithValueString(topics...)
		builder = builder.WithWhere(filter)
	}

	graphqlResponse, err := builder.Do(ctx)
	if err := combinedWeaviateError(graphqlResponse, err); err != nil {
		return nil, err
	}

	return decodeGetPassageResults(graphqlResponse, a.className)
}

// decodeGetPassageResults decodes the result returned by Weaviate's GraphQL
// Get query; these are returned as a nested map[string]any (just like JSON
// unmarshaled into a map[string]any). We have to extract all passage contents
// together with their metadata.
func decodeGetPassageResults(graphqlResponse *models.GraphQLResponse, className string) ([]advisorbot.Passage, error) {
	data, ok := graphqlResponse.Data["Get"]
	if !ok {
		return nil, fmt.Errorf("get key not found in result")
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("get key unexpected type")
	}
	slc, ok := doc[className].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list of results", className)
	}

	var out []advisorbot.Passage
	for _, s := range slc {
		smap, ok := s.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid element in list of passages")
		}
		content, ok := smap["content"].(string)
		if !ok {
			return nil, fmt.Errorf("expected content in passage")
		}
		metadata := advisorbot.Metadata{}
		for _, key := range []string{"title", "url", "topic"} {
			if value, ok := smap[key].(string); ok && value != "" {
				metadata[key] = value
			}
		}
		out = append(out, advisorbot.Passage{
			Content:  content,
			Metadata: metadata,
		})
	}
	return out, nil
}

// combinedWeaviateError generates an error if err is non-nil or result has
// errors, and returns an error (or nil if there's no error). It's useful for
// the results of the Weaviate GraphQL API's "Do" calls.
func combinedWeaviateError(graphqlResponse *models.GraphQLResponse, err error) error {
	if err != nil {
		return err
	}
	if len(graphqlResponse.Errors) != 0 {
		var ss []string
		for _, e := range graphqlResponse.Errors {
			ss = append(ss, e.Message)
		}
		return fmt.Errorf("weaviate error: %v", ss)
	}
	return nil
}
