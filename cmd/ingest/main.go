package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/neurosnap/sentences/english"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	weaviateclient "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"

	"github.com/campusbot/advisorbot"
	hugotAdapter "github.com/campusbot/advisorbot/adapter/hugot"
	redisAdapter "github.com/campusbot/advisorbot/adapter/redis"
	weaviateAdapter "github.com/campusbot/advisorbot/adapter/weaviate"
)

// document is one entry of the ingest input file.
type document struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Topic   string `json:"topic,omitempty"`
	Content string `json:"content"`
}

const batchSize = 32

func main() {
	var (
		inputPath = flag.String("input", "documents.json", "JSON file with documents to ingest")
		storeName = flag.String("store", "course", "target store: course (redis) or faq (weaviate)")
		chunkSize = flag.Int("chunk", 5, "sentences per passage")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal("fatal error config file: ", err)
	}

	cfg, err := advisorbot.FromViper(viper.GetViper())
	if err != nil {
		log.Fatal("config: ", err)
	}

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	documents, err := loadDocuments(*inputPath)
	if err != nil {
		log.Fatal("documents: ", err)
	}
	log.Printf("loaded %d documents from %s", len(documents), *inputPath)

	passages, err := chunkDocuments(documents, *chunkSize)
	if err != nil {
		log.Fatal("chunking: ", err)
	}
	log.Printf("chunked into %d passages", len(passages))

	session, err := hugot.NewGoSession()
	if err != nil {
		log.Fatal("hugot session: ", err)
	}
	defer func() {
		if err := session.Destroy(); err != nil {
			log.Fatal("hugot session destroy: ", err)
		}
	}()

	embedder, err := hugotAdapter.New(
		ctx,
		session,
		hugotAdapter.WithEmbeddingModelName(cfg.Model.Embedding),
		hugotAdapter.WithModelsDir(viper.GetString("models.dir")),
		hugotAdapter.WithLogger(logger.Sugar()),
	)
	if err != nil {
		log.Fatal("hugot adapter: ", err)
	}

	writer, err := buildWriter(ctx, *storeName, embedder, logger)
	if err != nil {
		log.Fatal("store: ", err)
	}

	for start := 0; start < len(passages); start += batchSize {
		end := min(start+batchSize, len(passages))
		batch := passages[start:end]

		vectors, err := embedder.EmbedPassages(ctx, batch)
		if err != nil {
			log.Fatal("embedding: ", err)
		}
		if err := writer.SavePassages(ctx, batch, vectors); err != nil {
			log.Fatal("saving passages: ", err)
		}
		log.Printf("ingested %d/%d passages", end, len(passages))
	}

	log.Println("done")
}

func loadDocuments(path string) ([]document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	var documents []document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	return documents, nil
}

// chunkDocuments splits each document into passages of up to chunkSize
// sentences, carrying the document metadata onto every passage.
func chunkDocuments(documents []document, chunkSize int) ([]advisorbot.Passage, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("sentence tokenizer: %w", err)
	}

	var passages []advisorbot.Passage
	for _, doc := range documents {
		var chunk []string
		flush := func() {
			if len(chunk) == 0 {
				return
			}
			metadata := advisorbot.Metadata{
				"title": doc.Title,
				"url":   doc.URL,
			}
			if doc.Topic != "" {
				metadata["topic"] = doc.Topic
			}
			passages = append(passages, advisorbot.Passage{
				Content:  strings.Join(chunk, " "),
				Metadata: metadata,
			}.Sanitize())
			chunk = nil
		}

		for _, aSentence := range tokenizer.Tokenize(doc.Content) {
			text := strings.TrimSpace(aSentence.Text)
			if text == "" {
				continue
			}
			chunk = append(chunk, text)
			if len(chunk) >= chunkSize {
				flush()
			}
		}
		flush()
	}

	return passages, nil
}

func buildWriter(ctx context.Context, storeName string, embedder advisorbot.Embedder, logger *zap.Logger) (advisorbot.PassageWriter, error) {
	switch storeName {
	case "course":
		rdb := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Protocol: viper.GetInt("redis.protocol"),
		})
		return redisAdapter.New(
			ctx,
			rdb,
			embedder,
			redisAdapter.WithName("course"),
			redisAdapter.WithIndexName(viper.GetString("redis.index")),
			redisAdapter.WithIndexPrefix(viper.GetString("redis.index_prefix")),
			redisAdapter.WithDialectVersion(viper.GetInt("redis.protocol")),
			redisAdapter.WithVectorDim(viper.GetInt("redis.vector_dim")),
			redisAdapter.WithVectorDistanceMetric(viper.GetString("redis.vector_distance_metric")),
			redisAdapter.WithLogger(logger),
		)
	case "faq":
		client, err := weaviateclient.NewClient(weaviateclient.Config{
			Host:   viper.GetString("weaviate.host"),
			Scheme: viper.GetString("weaviate.scheme"),
		})
		if err != nil {
			return nil, fmt.Errorf("weaviate client: %w", err)
		}
		return weaviateAdapter.New(
			ctx,
			client,
			embedder,
			weaviateAdapter.WithName("faq"),
			weaviateAdapter.WithClassName(viper.GetString("weaviate.class")),
			weaviateAdapter.WithLogger(logger.Sugar()),
		)
	default:
		return nil, fmt.Errorf("unknown store: %s", storeName)
	}
}
