package advisorbot

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

type clock func() time.Time

type advisorBot struct {
	stores     []VectorStore
	reranker   Reranker
	generative Generator
	store      Store
	feedback   FeedbackSink
	retrieval  RetrievalConfig
	template   string
	now        clock
	logger     *zap.Logger
}

type Option func(*advisorBot)

func WithStore(store Store) Option {
	return func(b *advisorBot) {
		b.store = store
	}
}

func WithFeedbackSink(sink FeedbackSink) Option {
	return func(b *advisorBot) {
		b.feedback = sink
	}
}

func WithRetrievalConfig(cfg RetrievalConfig) Option {
	return func(b *advisorBot) {
		b.retrieval = cfg
	}
}

func WithPromptTemplate(template string) Option {
	return func(b *advisorBot) {
		b.template = template
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *advisorBot) {
		b.logger = logger
	}
}

// New constructs the advisor service. Stores are fanned out to in the order
// given; a nil entry is treated as an absent store. Expensive collaborators
// (embedding session, reranker model, generative client) are constructed
// once by the caller and shared read-only across all queries.
func New(stores []VectorStore, reranker Reranker, gm Generator, options ...Option) *advisorBot {
	b := &advisorBot{
		stores:     stores,
		reranker:   reranker,
		generative: gm,
		retrieval:  DefaultRetrievalConfig(),
		template:   DefaultPromptTemplate,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     zap.NewNop(),
	}

	for _, o := range options {
		o(b)
	}

	return b
}

// StoreNames reports which stores are loaded, in fan-out order.
func (b *advisorBot) StoreNames() []string {
	names := make([]string, 0, len(b.stores))
	for _, s := range b.stores {
		if s == nil {
			continue
		}
		names = append(names, s.Name())
	}
	return names
}
