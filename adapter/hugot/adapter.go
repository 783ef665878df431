package hugot

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"go.uber.org/zap"
)

type modelConfig struct {
	name        string
	onxFilePath string
}

// Adapter runs local ONNX models through a shared hugot session. It exposes
// a feature extraction pipeline for embeddings and a text classification
// pipeline for cross-encoder relevance scoring. Either pipeline can be left
// unconfigured when only the other one is needed.
type Adapter struct {
	session         *hugot.Session
	embedding       *pipelines.FeatureExtractionPipeline
	crossEncoder    *pipelines.TextClassificationPipeline
	embeddingConfig modelConfig
	rerankerConfig  modelConfig
	modelsDir       string
	logger          *zap.SugaredLogger
}

type Option func(*Adapter)

func WithEmbeddingModelName(name string) Option {
	return func(a *Adapter) {
		a.embeddingConfig.name = name
	}
}

func WithRerankerModelName(name string) Option {
	return func(a *Adapter) {
		a.rerankerConfig.name = name
	}
}

func WithEmbeddingModelOnnxFilePath(path string) Option {
	return func(a *Adapter) {
		a.embeddingConfig.onxFilePath = path
	}
}

func WithRerankerModelOnnxFilePath(path string) Option {
	return func(a *Adapter) {
		a.rerankerConfig.onxFilePath = path
	}
}

func WithModelsDir(path string) Option {
	return func(a *Adapter) {
		a.modelsDir = path
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const (
	defaultModelsDir   = "/models"
	defaultOnxFilePath = "onnx/model.onnx"
)

func New(ctx context.Context, session *hugot.Session, options ...Option) (*Adapter, error) {
	a := &Adapter{
		session:         session,
		embeddingConfig: modelConfig{onxFilePath: defaultOnxFilePath},
		rerankerConfig:  modelConfig{onxFilePath: defaultOnxFilePath},
		modelsDir:       defaultModelsDir,
		logger:          zap.NewNop().Sugar(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.With(
		"embedding_model", a.embeddingConfig.name,
		"reranker_model", a.rerankerConfig.name,
		"models_dir", a.modelsDir,
	).Info("Init hugot adapter")

	if err := a.init(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

const adapterName = "hugot"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) init(ctx context.Context) error {
	if a.embeddingConfig.name == "" && a.rerankerConfig.name == "" {
		return fmt.Errorf("either embedding model or reranker model must be specified")
	}

	if a.embeddingConfig.name != "" {
		modelPath, err := a.ensureModel(a.embeddingConfig)
		if err != nil {
			return fmt.Errorf("failed to fetch embedding model: %w", err)
		}

		config := hugot.FeatureExtractionConfig{
			ModelPath: modelPath,
			Name:      "embeddingPipeline",
		}

		a.embedding, err = hugot.NewPipeline(a.session, config)
		if err != nil {
			return fmt.Errorf("failed to create embedding pipeline: %w", err)
		}
	}

	if a.rerankerConfig.name != "" {
		modelPath, err := a.ensureModel(a.rerankerConfig)
		if err != nil {
			return fmt.Errorf("failed to fetch reranker model: %w", err)
		}

		config := hugot.TextClassificationConfig{
			ModelPath: modelPath,
			Name:      "crossEncoderPipeline",
		}

		a.crossEncoder, err = hugot.NewPipeline(a.session, config)
		if err != nil {
			return fmt.Errorf("failed to create cross encoder pipeline: %w", err)
		}
	}

	return nil
}

func (a *Adapter) ensureModel(config modelConfig) (string, error) {
	modelPath, err := checkModelExists(a.modelsDir, config.name)
	if err != nil {
		return "", fmt.Errorf("failed to check model: %w", err)
	}

	if modelPath != "" {
		a.logger.With("model_path", modelPath).Debug("Model already exists, skipping download")
		return modelPath, nil
	}

	a.logger.With("model", config.name).Info("Start downloading model")

	downloadOptions := hugot.NewDownloadOptions()
	downloadOptions.OnnxFilePath = config.onxFilePath
	modelPath, err = hugot.DownloadModel(config.name, a.modelsDir, downloadOptions)
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}

	a.logger.With("model", config.name).Info("Downloaded model")

	return modelPath, nil
}

func checkModelExists(destination, modelName string) (string, error) {
	modelP := modelName
	if strings.Contains(modelP, ":") {
		modelP = strings.Split(modelName, ":")[0]
	}
	modelPath := path.Join(destination, strings.ReplaceAll(modelP, "/", "_"))

	_, err := os.Stat(modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return modelPath, nil
}
