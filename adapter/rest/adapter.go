package rest

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/campusbot/advisorbot"
)

type AdvisorBot interface {
	Answer(ctx context.Context, question string, topics ...string) (*advisorbot.AnswerRecord, error)
	SaveFeedback(ctx context.Context, question, answer string, helpful bool) error
}

type Adapter struct {
	advisorBot       AdvisorBot
	exampleQuestions []string
	storeNames       []string
	logger           *zap.SugaredLogger
}

type Option func(*Adapter)

func WithExampleQuestions(questions []string) Option {
	return func(a *Adapter) {
		a.exampleQuestions = questions
	}
}

// WithStoreNames sets the vector store names reported by the health endpoint.
func WithStoreNames(names []string) Option {
	return func(a *Adapter) {
		a.storeNames = names
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(advisorBot AdvisorBot, options ...Option) *Adapter {
	a := &Adapter{
		advisorBot: advisorBot,
		logger:     zap.NewNop().Sugar(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

const (
	answerTimeout  = 120 * time.Second
	defaultTimeout = 3 * time.Second
)

func (a *Adapter) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/answers", a.answerHandler)
	mux.HandleFunc("POST /v1/feedback", a.feedbackHandler)
	mux.HandleFunc("GET /v1/examples", a.examplesHandler)
	mux.HandleFunc("GET /v1/health", a.healthHandler)
}
