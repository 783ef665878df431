package advisorbottest

import (
	"time"

	"github.com/campusbot/advisorbot"
)

type FeedbackOption func(*advisorbot.Feedback)

func WithFeedbackQuestion(question string) FeedbackOption {
	return func(f *advisorbot.Feedback) {
		f.Question = question
	}
}

func WithFeedbackHelpful(helpful bool) FeedbackOption {
	return func(f *advisorbot.Feedback) {
		f.Helpful = helpful
	}
}

func WithFeedbackCreated(created time.Time) FeedbackOption {
	return func(f *advisorbot.Feedback) {
		f.Created = created
	}
}

func (g *DataGen) Feedback(options ...FeedbackOption) *advisorbot.Feedback {
	aFeedback := advisorbot.Feedback{
		ID:       advisorbot.NewFeedbackID(),
		Question: g.Question(),
		Answer:   g.Sentence(10),
		Helpful:  g.Bool(),
		Created:  g.now,
	}

	for _, o := range options {
		o(&aFeedback)
	}

	return &aFeedback
}
