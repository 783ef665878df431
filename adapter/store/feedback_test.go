package store

import (
	"time"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"

	"github.com/campusbot/advisorbot"
)

func (s *StoreTestSuite) TestSaveAndListFeedback() {
	ctx, cancel := testContext()
	defer cancel()

	feedbacks, err := s.adapter.ListFeedback(ctx, 10)
	s.Require().NoError(err)
	s.Empty(feedbacks)

	var (
		feedback1 = &advisorbot.Feedback{
			ID:       advisorbot.NewFeedbackID(),
			Question: "What is the pass mark for the dissertation?",
			Answer:   "The pass mark is 50% [1].",
			Helpful:  true,
			Created:  time.Now().UTC(),
		}
		feedback2 = &advisorbot.Feedback{
			ID:       advisorbot.NewFeedbackID(),
			Question: "Can I defer my studies?",
			Answer:   "I couldn't find relevant information in the database.",
			Helpful:  false,
			Created:  time.Now().UTC().Add(time.Second),
		}
	)

	err = s.adapter.SaveFeedback(ctx, feedback1, feedback2)
	s.Require().NoError(err)

	feedbacks, err = s.adapter.ListFeedback(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(feedbacks, 2)

	// Most recent first
	s.Equal(feedback2, feedbacks[0])
	s.Equal(feedback1, feedbacks[1])

	feedbacks, err = s.adapter.ListFeedback(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(feedbacks, 1)
	s.Equal(feedback2, feedbacks[0])
}

func (s *StoreTestSuite) TestSaveFeedbackEmpty() {
	ctx, cancel := testContext()
	defer cancel()

	s.Require().NoError(s.adapter.SaveFeedback(ctx))
}
