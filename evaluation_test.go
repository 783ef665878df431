package advisorbot

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	records map[string]*AnswerRecord
	errs    map[string]error

	questions []string
}

func (f *fakePipeline) Answer(ctx context.Context, question string, topics ...string) (*AnswerRecord, error) {
	f.questions = append(f.questions, question)
	if err, ok := f.errs[question]; ok {
		return nil, err
	}
	if record, ok := f.records[question]; ok {
		return record, nil
	}
	return &AnswerRecord{
		Outcome: OutcomeAnswered,
		Answer:  "some answer",
		Sources: []Source{},
		Timings: newTimings(),
	}, nil
}

type fakeScorer struct {
	result *ScoreResult
	err    error

	gotRows []EvaluationRow
}

func (f *fakeScorer) Score(ctx context.Context, rows []EvaluationRow) (*ScoreResult, error) {
	f.gotRows = rows
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func answeredRecord(answer string, sources ...Source) *AnswerRecord {
	return &AnswerRecord{
		Outcome: OutcomeAnswered,
		Answer:  answer,
		Sources: sources,
		Timings: newTimings(),
	}
}

func TestEvaluatorRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "result.json")

	cases := []TestCase{
		{Question: "q1", GroundTruth: "g1"},
		{Question: "q2", GroundTruth: "g2"},
		{Question: "q3", GroundTruth: "g3"},
	}

	pipeline := &fakePipeline{
		records: map[string]*AnswerRecord{
			"q1": answeredRecord("a1",
				Source{Content: "ctx1", Score: 0.9},
				Source{Content: "ctx2", Score: 0.5},
			),
			"q3": answeredRecord("a3", Source{Content: "ctx3", Score: 0.7}),
		},
		errs: map[string]error{
			"q2": fmt.Errorf("generation blew up"),
		},
	}

	scorer := &fakeScorer{result: &ScoreResult{
		Metrics: map[string]any{
			"faithfulness":       json.Number("0.91"),
			"answer_relevancy":   float32(0.84),
			"context_recall":     []any{json.Number("0.8"), json.Number("0.6")},
			"answer_correctness": 0.75,
		},
		Rows: []map[string]any{
			{"question": "q1", "faithfulness": json.Number("0.95")},
			{"question": "q2", "faithfulness": json.Number("0")},
			{"question": "q3", "faithfulness": float32(0.88)},
		},
	}}

	evaluator := NewEvaluator(pipeline, scorer, Config{Experiment: "baseline"},
		WithOutputPath(outputPath),
	)

	report, err := evaluator.Run(context.Background(), cases)
	require.NoError(t, err)
	require.NotNil(t, report)

	// Cases are answered strictly in order
	assert.Equal(t, []string{"q1", "q2", "q3"}, pipeline.questions)

	// The failed case was substituted with sentinels, not dropped
	require.Len(t, scorer.gotRows, 3)
	assert.Equal(t, "Error", scorer.gotRows[1].Answer)
	assert.Equal(t, []string{"No context"}, scorer.gotRows[1].Contexts)

	// Successful rows carry contexts and retrieval scores in rank order
	assert.Equal(t, []string{"ctx1", "ctx2"}, scorer.gotRows[0].Contexts)
	assert.Equal(t, []float64{0.9, 0.5}, scorer.gotRows[0].RetrievalScores)

	assert.Equal(t, StatusSuccess, report.Metadata.Status)

	// Metric values are normalized to float64, list-valued metrics are
	// averaged
	assert.Equal(t, 0.91, report.Metrics["faithfulness"])
	assert.InDelta(t, 0.84, report.Metrics["answer_relevancy"], 1e-6)
	assert.InDelta(t, 0.7, report.Metrics["context_recall"], 1e-9)
	assert.Equal(t, 0.75, report.Metrics["answer_correctness"])

	// Detailed rows are normalized and augmented with retrieval scores
	require.Len(t, report.DetailedResults, 3)
	assert.Equal(t, 0.95, report.DetailedResults[0]["faithfulness"])
	assert.Equal(t, []float64{0.9, 0.5}, report.DetailedResults[0]["retrieval_scores"])

	// The report was written to disk
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Contains(t, onDisk, "metadata")
	assert.Contains(t, onDisk, "configuration")
	assert.Contains(t, onDisk, "metrics")
	assert.Contains(t, onDisk, "detailed_results")
}

func TestEvaluatorRunMissingMetric(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{result: &ScoreResult{
		Metrics: map[string]any{
			"faithfulness": 0.9,
		},
		Rows: []map[string]any{{"question": "q1"}},
	}}

	evaluator := NewEvaluator(&fakePipeline{}, scorer, Config{}, WithOutputPath(""))

	report, err := evaluator.Run(context.Background(), []TestCase{{Question: "q1", GroundTruth: "g1"}})
	require.NoError(t, err)

	// A missing metric contributes a zero, the others are unaffected
	assert.Equal(t, 0.9, report.Metrics["faithfulness"])
	assert.Equal(t, float64(0), report.Metrics["answer_relevancy"])
	assert.Equal(t, float64(0), report.Metrics["context_recall"])
	assert.Equal(t, float64(0), report.Metrics["answer_correctness"])
}

func TestEvaluatorRunNoDetailedRows(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{result: &ScoreResult{
		Metrics: map[string]any{"faithfulness": 0.9},
	}}

	evaluator := NewEvaluator(&fakePipeline{}, scorer, Config{}, WithOutputPath(""))

	report, err := evaluator.Run(context.Background(), []TestCase{
		{Question: "q1", GroundTruth: "g1"},
		{Question: "q2", GroundTruth: "g2"},
	})
	require.NoError(t, err)

	// Falls back to raw rows when the scorer gives no breakdown
	require.Len(t, report.DetailedResults, 2)
	assert.Equal(t, "q1", report.DetailedResults[0]["question"])
	assert.Equal(t, "g1", report.DetailedResults[0]["ground_truth"])
}

func TestEvaluatorRunScoringFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	emergencyPath := filepath.Join(dir, "emergency.csv")

	pipeline := &fakePipeline{
		records: map[string]*AnswerRecord{
			"q1": answeredRecord("a1", Source{Content: "ctx1", Score: 0.9}),
		},
		errs: map[string]error{
			"q2": fmt.Errorf("boom"),
		},
	}
	scorer := &fakeScorer{err: fmt.Errorf("judge unavailable")}

	evaluator := NewEvaluator(pipeline, scorer, Config{Experiment: "baseline"},
		WithOutputPath(""),
		WithEmergencyPath(emergencyPath),
	)

	report, err := evaluator.Run(context.Background(), []TestCase{
		{Question: "q1", GroundTruth: "g1"},
		{Question: "q2", GroundTruth: "g2"},
	})

	// The error propagates but the report survives
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, StatusScoringFailed, report.Metadata.Status)
	assert.Empty(t, report.Metrics)
	require.Len(t, report.DetailedResults, 2)
	assert.Equal(t, "a1", report.DetailedResults[0]["answer"])
	assert.Equal(t, "Error", report.DetailedResults[1]["answer"])

	// The emergency dump holds every answered row
	f, openErr := os.Open(emergencyPath)
	require.NoError(t, openErr)
	defer f.Close()

	records, readErr := csv.NewReader(f).ReadAll()
	require.NoError(t, readErr)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"question", "answer", "contexts", "ground_truth"}, records[0])
	assert.Equal(t, "q1", records[1][0])
	assert.Equal(t, `["ctx1"]`, records[1][2])
	assert.Equal(t, "Error", records[2][1])
	assert.Equal(t, `["No context"]`, records[2][2])
}

type runRecorder struct {
	Store
	runs []*EvaluationRun
}

func (r *runRecorder) SaveEvaluationRun(ctx context.Context, run *EvaluationRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func TestEvaluatorRunHistory(t *testing.T) {
	t.Parallel()

	recorder := &runRecorder{}
	scorer := &fakeScorer{result: &ScoreResult{
		Metrics: map[string]any{"faithfulness": 0.9},
		Rows:    []map[string]any{{"question": "q1"}},
	}}

	evaluator := NewEvaluator(&fakePipeline{errs: map[string]error{"q2": fmt.Errorf("boom")}}, scorer,
		Config{Experiment: "baseline"},
		WithOutputPath(""),
		WithRunStore(recorder),
	)

	_, err := evaluator.Run(context.Background(), []TestCase{
		{Question: "q1", GroundTruth: "g1"},
		{Question: "q2", GroundTruth: "g2"},
	})
	require.NoError(t, err)

	require.Len(t, recorder.runs, 1)
	run := recorder.runs[0]
	assert.Equal(t, "baseline", run.Experiment)
	assert.Equal(t, StatusSuccess, run.Status)
	assert.Equal(t, 2, run.Cases)
	assert.Equal(t, 1, run.Failures)
	assert.False(t, run.ID.IsNil())
}
