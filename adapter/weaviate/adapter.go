package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"

	"github.com/campusbot/advisorbot"
)

const defaultClassName = "Passage"

// Adapter stores passages with pre-computed embedding vectors in a Weaviate
// class and retrieves them by vector similarity. Vectorization is disabled on
// the class, all vectors come from the injected embedder.
type Adapter struct {
	client    *weaviate.Client
	embedder  advisorbot.Embedder
	name      string
	className string
	logger    *zap.SugaredLogger
}

type Option func(*Adapter)

func WithName(name string) Option {
	return func(a *Adapter) {
		a.name = name
	}
}

func WithClassName(className string) Option {
	return func(a *Adapter) {
		a.className = className
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(ctx context.Context, client *weaviate.Client, embedder advisorbot.Embedder, options ...Option) (*Adapter, error) {
	a := &Adapter{
		client:    client,
		embedder:  embedder,
		name:      "faq",
		className: defaultClassName,
		logger:    zap.NewNop().Sugar(),
	}

	for _, o := range options {
		o(a)
	}

	return a, a.init(ctx)
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) init(ctx context.Context) error {
	// Create a new class (collection) in weaviate if it doesn't exist yet.
	cls := &models.Class{
		Class:      a.className,
		Vectorizer: "none",
	}
	exists, err := a.client.Schema().ClassExistenceChecker().WithClassName(cls.Class).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate error: %w", err)
	}
	if !exists {
		err = a.client.Schema().ClassCreator().WithClass(cls).Do(ctx)
		if err != nil {
			return fmt.Errorf("weaviate error: %w", err)
		}
	}

	return nil
}
