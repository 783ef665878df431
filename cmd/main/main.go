package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/knights-analytics/hugot"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	weaviateclient "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/campusbot/advisorbot"
	feedbackAdapter "github.com/campusbot/advisorbot/adapter/feedback"
	googlegenai "github.com/campusbot/advisorbot/adapter/google-genai"
	hugotAdapter "github.com/campusbot/advisorbot/adapter/hugot"
	redisAdapter "github.com/campusbot/advisorbot/adapter/redis"
	"github.com/campusbot/advisorbot/adapter/rest"
	"github.com/campusbot/advisorbot/adapter/store"
	weaviateAdapter "github.com/campusbot/advisorbot/adapter/weaviate"
)

func main() {
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

	// The client gets the API key from the environment variable `GEMINI_API_KEY`.
	genaiClient, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.Fatal("genai client: ", err)
	}

	// Local ONNX models for embedding and reranking share one session
	session, err := hugot.NewGoSession()
	if err != nil {
		log.Fatal("hugot session: ", err)
	}
	defer func() {
		if err := session.Destroy(); err != nil {
			log.Fatal("hugot session destroy: ", err)
		}
	}()

	models, err := hugotAdapter.New(
		ctx,
		session,
		hugotAdapter.WithEmbeddingModelName(cfg.Model.Embedding),
		hugotAdapter.WithRerankerModelName(cfg.Model.Reranker),
		hugotAdapter.WithModelsDir(viper.GetString("models.dir")),
		hugotAdapter.WithLogger(logger.Sugar()),
	)
	if err != nil {
		log.Fatal("hugot adapter: ", err)
	}

	// Connect to the database
	dbConnOpts := url.Values{}
	dbConnOpts.Set("_fk", "true")
	dbConnOpts.Set("_journal", "WAL")
	dbConnOpts.Set("_timeout", "5000")

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", viper.GetString("db.name"), dbConnOpts.Encode()))
	if err != nil {
		log.Fatal("db open: ", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatal("db ping: ", err)
	}

	// Run db migrations
	if err := advisorbot.Migrate(db, viper.GetString("db.migrations.path")); err != nil {
		log.Fatal("db migrate: ", err)
	}

	stores, err := buildStores(ctx, models, logger)
	if err != nil {
		log.Fatal("stores: ", err)
	}

	lm := googlegenai.New(
		genaiClient,
		googlegenai.WithGenerativeModel(cfg.Model.Generative),
		googlegenai.WithTemperature(float32(cfg.Model.Temperature)),
		googlegenai.WithLogger(logger.Sugar()),
	)

	bot := advisorbot.New(
		stores,
		models,
		lm,
		advisorbot.WithRetrievalConfig(cfg.Retrieval),
		advisorbot.WithPromptTemplate(cfg.PromptTemplate),
		advisorbot.WithStore(store.New(db)),
		advisorbot.WithFeedbackSink(feedbackAdapter.New(viper.GetString("feedback.path"))),
		advisorbot.WithLogger(logger),
	)

	logger.Sugar().With("stores", bot.StoreNames()).Info("Advisor ready")

	var (
		restAdapter = rest.New(bot,
			rest.WithExampleQuestions(cfg.ExampleQuestions),
			rest.WithStoreNames(bot.StoreNames()),
			rest.WithLogger(logger.Sugar()),
		)
		mux     = http.NewServeMux()
		address = ":" + viper.GetString("http.port")
	)
	restAdapter.RegisterHandlers(mux)

	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Second,
		Addr:              address,
		Handler:           mux,
	}

	log.Println("listening on", address)

	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
		log.Println("Stopped serving new connections.")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP shutdown error: %v", err)
	}
	log.Println("Graceful shutdown complete.")
}

// buildStores connects every vector store enabled in the config. A store
// that is not configured is simply absent from the fan-out.
func buildStores(ctx context.Context, embedder advisorbot.Embedder, logger *zap.Logger) ([]advisorbot.VectorStore, error) {
	var stores []advisorbot.VectorStore

	if addr := viper.GetString("redis.addr"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Protocol: viper.GetInt("redis.protocol"),
		})
		courseStore, err := redisAdapter.New(
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
		if err != nil {
			return nil, fmt.Errorf("redis adapter: %w", err)
		}
		log.Println("store: course (redis)")
		stores = append(stores, courseStore)
	}

	if host := viper.GetString("weaviate.host"); host != "" {
		client, err := weaviateclient.NewClient(weaviateclient.Config{
			Host:   host,
			Scheme: viper.GetString("weaviate.scheme"),
		})
		if err != nil {
			return nil, fmt.Errorf("weaviate client: %w", err)
		}
		faqStore, err := weaviateAdapter.New(
			ctx,
			client,
			embedder,
			weaviateAdapter.WithName("faq"),
			weaviateAdapter.WithClassName(viper.GetString("weaviate.class")),
			weaviateAdapter.WithLogger(logger.Sugar()),
		)
		if err != nil {
			return nil, fmt.Errorf("weaviate adapter: %w", err)
		}
		log.Println("store: faq (weaviate)")
		stores = append(stores, faqStore)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("no vector stores configured")
	}

	return stores, nil
}
