package googlegenai

import (
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type Adapter struct {
	client          *genai.Client
	generativeModel string
	judgeModel      string
	temperature     float32
	logger          *zap.SugaredLogger
}

type Option func(*Adapter)

func WithGenerativeModel(model string) Option {
	return func(a *Adapter) {
		a.generativeModel = model
	}
}

// WithJudgeModel sets the model used for scoring generated answers. Defaults
// to the generative model when not set.
func WithJudgeModel(model string) Option {
	return func(a *Adapter) {
		a.judgeModel = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(a *Adapter) {
		a.temperature = temperature
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const defaultTemperature = 0.1

func New(client *genai.Client, options ...Option) *Adapter {
	a := &Adapter{
		client:      client,
		temperature: defaultTemperature,
		logger:      zap.NewNop().Sugar(),
	}

	for _, o := range options {
		o(a)
	}

	if a.judgeModel == "" {
		a.judgeModel = a.generativeModel
	}

	a.logger.With(
		"generative model", a.generativeModel,
		"judge model", a.judgeModel,
		"temperature", a.temperature,
	).Info("Init google genai adapter")

	return a
}

const adapterName = "google-genai"

func (a *Adapter) Name() string {
	return adapterName
}
