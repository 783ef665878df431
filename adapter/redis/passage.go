package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"

	"github.com/campusbot/advisorbot"
)

func (a *Adapter) SavePassages(ctx context.Context, passages []advisorbot.Passage, vectors []advisorbot.Vector) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("passages and vectors must have the same length")
	}

	for i, vector := range vectors {
		key := fmt.Sprintf("%s%v", a.indexPrefix, uuid.Must(uuid.NewV4()))
		fields, err := a.client.HSet(ctx,
			key,
			map[string]any{
				"content":   passages[i].Content,
				"title":     passages[i].Metadata.String("title"),
				"url":       passages[i].Metadata.String("url"),
				"topic":     passages[i].Metadata.String("topic"),
				"embedding": floatsToBytes(vector),
			},
		).Result()
		if err != nil {
			return err
		}
		if fields == 0 {
			return fmt.Errorf("no fields were added to redis")
		}
	}

	return nil
}

// SearchPassages embeds the query and returns the closest passages by
// vector distance. An index with no documents yields an empty slice.
func (a *Adapter) SearchPassages(ctx context.Context, query string, limit int) ([]advisorbot.Passage, error) {
	vector, err := a.embedder.EmbedContent(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	knnQuery := fmt.Sprintf("*=>[KNN %d @embedding $vec AS vector_distance]", limit)

	// Results are ordered by vector_distance, lowest distance meaning
	// greatest similarity to the query.
	results, err := a.client.FTSearchWithArgs(ctx,
		a.indexName,
		knnQuery,
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "vector_distance"},
				{FieldName: "content"},
				{FieldName: "title"},
				{FieldName: "url"},
				{FieldName: "topic"},
			},
			DialectVersion: a.dialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(vector),
			},
			SortBy: []redis.FTSearchSortBy{{FieldName: "vector_distance", Asc: true}},
			Limit:  limit,
		},
	).Result()
	if err != nil {
		return nil, err
	}

	return mapRedisPassages(results.Docs), nil
}

func mapRedisPassages(rds []redis.Document) []advisorbot.Passage {
	passages := make([]advisorbot.Passage, 0, len(rds))
	for _, rd := range rds {
		passages = append(passages, mapRedisPassage(rd))
	}
	return passages
}

func mapRedisPassage(rd redis.Document) advisorbot.Passage {
	metadata := advisorbot.Metadata{}
	for _, field := range []string{"title", "url", "topic"} {
		if value, ok := rd.Fields[field]; ok && value != "" {
			metadata[field] = value
		}
	}
	return advisorbot.Passage{
		Content:  rd.Fields["content"],
		Metadata: metadata,
	}
}

// helper function to convert []float32 to []byte
func floatsToBytes(fs []float32) []byte {
	buf := make([]byte, len(fs)*4)

	for i, f := range fs {
		u := math.Float32bits(f)
		binary.NativeEndian.PutUint32(buf[i*4:], u)
	}

	return buf
}
