package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/knights-analytics/hugot"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	weaviateclient "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/campusbot/advisorbot"
	googlegenai "github.com/campusbot/advisorbot/adapter/google-genai"
	hugotAdapter "github.com/campusbot/advisorbot/adapter/hugot"
	redisAdapter "github.com/campusbot/advisorbot/adapter/redis"
	"github.com/campusbot/advisorbot/adapter/store"
	weaviateAdapter "github.com/campusbot/advisorbot/adapter/weaviate"
)

func main() {
	var (
		testsetPath = flag.String("testset", "testset.csv", "labeled test set CSV")
		outputPath  = flag.String("output", "latest_experiment_result.json", "report output path")
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

	cases, err := advisorbot.LoadTestCases(*testsetPath)
	if err != nil {
		log.Fatal("test set: ", err)
	}
	if len(cases) == 0 {
		log.Fatal("test set is empty")
	}
	log.Printf("loaded %d test cases from %s", len(cases), *testsetPath)

	genaiClient, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.Fatal("genai client: ", err)
	}

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

	stores, err := buildStores(ctx, models, logger)
	if err != nil {
		log.Fatal("stores: ", err)
	}

	lm := googlegenai.New(
		genaiClient,
		googlegenai.WithGenerativeModel(cfg.Model.Generative),
		googlegenai.WithJudgeModel(viper.GetString("model.judge")),
		googlegenai.WithTemperature(float32(cfg.Model.Temperature)),
		googlegenai.WithLogger(logger.Sugar()),
	)

	bot := advisorbot.New(
		stores,
		models,
		lm,
		advisorbot.WithRetrievalConfig(cfg.Retrieval),
		advisorbot.WithPromptTemplate(cfg.PromptTemplate),
		advisorbot.WithLogger(logger),
	)

	options := []advisorbot.EvaluatorOption{
		advisorbot.WithOutputPath(*outputPath),
		advisorbot.WithEvaluatorLogger(logger),
	}

	// Run history is optional, only kept when a database is configured
	if dbName := viper.GetString("db.name"); dbName != "" {
		dbConnOpts := url.Values{}
		dbConnOpts.Set("_fk", "true")
		dbConnOpts.Set("_journal", "WAL")
		dbConnOpts.Set("_timeout", "5000")

		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", dbName, dbConnOpts.Encode()))
		if err != nil {
			log.Fatal("db open: ", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal("db ping: ", err)
		}
		if err := advisorbot.Migrate(db, viper.GetString("db.migrations.path")); err != nil {
			log.Fatal("db migrate: ", err)
		}
		options = append(options, advisorbot.WithRunStore(store.New(db)))
	}

	evaluator := advisorbot.NewEvaluator(bot, lm, cfg, options...)

	report, err := evaluator.Run(ctx, cases)
	if err != nil {
		log.Fatal("evaluation: ", err)
	}

	fmt.Println("=== Evaluation results ===")
	fmt.Println("experiment:", cfg.Experiment)
	fmt.Println("pipeline:  ", report.Metadata.Pipeline)
	for _, name := range advisorbot.MetricNames {
		fmt.Printf("%-20s %.4f\n", name, report.Metrics[name])
	}
	fmt.Println("report saved to", *outputPath)
}

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
		stores = append(stores, faqStore)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("no vector stores configured")
	}

	return stores, nil
}
