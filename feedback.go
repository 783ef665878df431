package advisorbot

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

type FeedbackID struct{ uuid.UUID }

func NewFeedbackID() FeedbackID {
	return FeedbackID{uuid.Must(uuid.NewV4())}
}

// Feedback is one helpfulness vote on a generated answer.
type Feedback struct {
	ID       FeedbackID
	Question string
	Answer   string
	Helpful  bool
	Created  time.Time
}

// SaveFeedback records feedback in the append-only sink and, when a store
// is configured, persists it for later querying. Both destinations are
// optional.
func (b *advisorBot) SaveFeedback(ctx context.Context, question, answer string, helpful bool) error {
	aFeedback := &Feedback{
		ID:       NewFeedbackID(),
		Question: question,
		Answer:   answer,
		Helpful:  helpful,
		Created:  b.now(),
	}

	if b.feedback != nil {
		if err := b.feedback.Append(ctx, aFeedback); err != nil {
			return fmt.Errorf("appending feedback: %w", err)
		}
	}

	if b.store != nil {
		if err := b.store.SaveFeedback(ctx, aFeedback); err != nil {
			return fmt.Errorf("saving feedback: %w", err)
		}
	}

	return nil
}
