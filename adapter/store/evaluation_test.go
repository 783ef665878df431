package store

import (
	"time"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"

	"github.com/campusbot/advisorbot"
)

func (s *StoreTestSuite) TestFindEvaluationRun() {
	ctx, cancel := testContext()
	defer cancel()

	aRun := &advisorbot.EvaluationRun{
		ID:         advisorbot.NewRunID(),
		Experiment: "baseline",
		Status:     advisorbot.StatusSuccess,
		Metrics: map[string]float64{
			"faithfulness": 0.91,
		},
		Cases:    25,
		Failures: 1,
		Created:  time.Now().UTC(),
	}

	_, err := s.adapter.FindEvaluationRun(ctx, aRun.ID)
	s.Require().ErrorIs(err, advisorbot.ErrNotFound)

	s.Require().NoError(s.adapter.SaveEvaluationRun(ctx, aRun))

	savedRun, err := s.adapter.FindEvaluationRun(ctx, aRun.ID)
	s.Require().NoError(err)
	s.Equal(aRun, savedRun)
}

func (s *StoreTestSuite) TestSaveAndListEvaluationRuns() {
	ctx, cancel := testContext()
	defer cancel()

	runs, err := s.adapter.ListEvaluationRuns(ctx, 10)
	s.Require().NoError(err)
	s.Empty(runs)

	var (
		run1 = &advisorbot.EvaluationRun{
			ID:         advisorbot.NewRunID(),
			Experiment: "baseline",
			Status:     advisorbot.StatusSuccess,
			Metrics: map[string]float64{
				"faithfulness":       0.91,
				"answer_relevancy":   0.84,
				"context_recall":     0.77,
				"answer_correctness": 0.8,
			},
			Cases:    25,
			Failures: 1,
			Created:  time.Now().UTC(),
		}
		run2 = &advisorbot.EvaluationRun{
			ID:         advisorbot.NewRunID(),
			Experiment: "rerank-threshold-0.5",
			Status:     advisorbot.StatusScoringFailed,
			Cases:      25,
			Failures:   25,
			Created:    time.Now().UTC().Add(time.Second),
		}
	)

	s.Require().NoError(s.adapter.SaveEvaluationRun(ctx, run1))
	s.Require().NoError(s.adapter.SaveEvaluationRun(ctx, run2))

	runs, err = s.adapter.ListEvaluationRuns(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(runs, 2)

	// Most recent first
	s.Equal(run2, runs[0])
	s.Equal(run1, runs[1])

	runs, err = s.adapter.ListEvaluationRuns(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(runs, 1)
	s.Equal(run2, runs[0])
}
