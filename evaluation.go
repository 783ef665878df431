package advisorbot

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// TestCase is one labeled question from the offline test set.
type TestCase struct {
	Question    string
	GroundTruth string
}

// EvaluationRow is one answered test case, ready for scoring.
type EvaluationRow struct {
	Question        string    `json:"question"`
	GroundTruth     string    `json:"ground_truth"`
	Answer          string    `json:"answer"`
	Contexts        []string  `json:"contexts"`
	RetrievalScores []float64 `json:"retrieval_scores"`
}

// Sentinel values substituted for a test case whose pipeline run failed,
// so the batch completes and the row stays countable.
const (
	SentinelAnswer  = "Error"
	SentinelContext = "No context"
)

// AnswerPipeline is the part of the advisor service the harness drives.
type AnswerPipeline interface {
	Answer(ctx context.Context, question string, topics ...string) (*AnswerRecord, error)
}

type RunID struct{ uuid.UUID }

func NewRunID() RunID {
	return RunID{uuid.Must(uuid.NewV4())}
}

// EvaluationRun is the persisted summary of one harness run.
type EvaluationRun struct {
	ID         RunID
	Experiment string
	Status     string
	Metrics    map[string]float64
	Cases      int
	Failures   int
	Created    time.Time
}

// Evaluator drives the pipeline over a labeled test set and aggregates
// quality metrics. Test cases are processed strictly sequentially to keep
// calls to metered external APIs bounded and deterministic.
type Evaluator struct {
	pipeline      AnswerPipeline
	scorer        Scorer
	cfg           Config
	store         Store
	outputPath    string
	emergencyPath string
	now           clock
	logger        *zap.Logger
}

type EvaluatorOption func(*Evaluator)

func WithRunStore(store Store) EvaluatorOption {
	return func(e *Evaluator) {
		e.store = store
	}
}

func WithOutputPath(path string) EvaluatorOption {
	return func(e *Evaluator) {
		e.outputPath = path
	}
}

func WithEmergencyPath(path string) EvaluatorOption {
	return func(e *Evaluator) {
		e.emergencyPath = path
	}
}

func WithEvaluatorLogger(logger *zap.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

const (
	defaultOutputPath    = "latest_experiment_result.json"
	defaultEmergencyPath = "emergency_results.csv"
)

func NewEvaluator(pipeline AnswerPipeline, scorer Scorer, cfg Config, options ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		pipeline:      pipeline,
		scorer:        scorer,
		cfg:           cfg,
		outputPath:    defaultOutputPath,
		emergencyPath: defaultEmergencyPath,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        zap.NewNop(),
	}

	for _, o := range options {
		o(e)
	}

	return e
}

// Run answers every test case, submits the batch for scoring and packages
// a report. A single failing case does not abort the batch; a failing
// scorer still leaves an emergency dump on disk. The returned report is
// non-nil even when scoring fails.
func (e *Evaluator) Run(ctx context.Context, cases []TestCase) (*Report, error) {
	var (
		rows     = make([]EvaluationRow, 0, len(cases))
		failures = 0
	)

	for i, tc := range cases {
		e.logger.Sugar().Infof("[%d/%d] answering: %s", i+1, len(cases), tc.Question)

		row := EvaluationRow{
			Question:    tc.Question,
			GroundTruth: tc.GroundTruth,
		}

		record, err := e.pipeline.Answer(ctx, tc.Question)
		if err != nil {
			e.logger.Sugar().With("question", tc.Question).Warnf("pipeline error: %v", err)
			row.Answer = SentinelAnswer
			row.Contexts = []string{SentinelContext}
			failures++
		} else {
			row.Answer = record.Answer
			for _, src := range record.Sources {
				row.Contexts = append(row.Contexts, src.Content)
				row.RetrievalScores = append(row.RetrievalScores, src.Score)
			}
		}

		rows = append(rows, row)
	}

	report := &Report{
		Metadata: ReportMetadata{
			Timestamp: e.now().Format(time.DateTime),
			Status:    StatusSuccess,
			Pipeline:  e.cfg.Describe(),
		},
		Configuration: e.cfg,
		Metrics:       map[string]float64{},
	}

	result, err := e.scorer.Score(ctx, rows)
	if err != nil {
		// The work already done must survive a scorer failure.
		for _, row := range rows {
			e.logger.Sugar().Infof("partial answer for %q: %s", row.Question, row.Answer)
		}
		if dumpErr := WriteEmergencyCSV(e.emergencyPath, rows); dumpErr != nil {
			e.logger.Sugar().Errorf("emergency dump failed: %v", dumpErr)
		} else {
			e.logger.Sugar().Infof("saved raw answers to %s", e.emergencyPath)
		}

		report.Metadata.Status = StatusScoringFailed
		report.DetailedResults = rawRows(rows)
		e.saveRun(ctx, report, len(cases), failures)

		return report, fmt.Errorf("scoring: %w", err)
	}

	// Each metric lookup is independently fallible; a missing metric
	// contributes a zero rather than aborting extraction of the others.
	for _, name := range MetricNames {
		value, ok := extractMetric(result.Metrics, name)
		if !ok {
			e.logger.Sugar().Warnf("could not find score for %s", name)
		}
		report.Metrics[name] = value
	}

	detailed := normalizeRows(result.Rows)
	if len(detailed) == 0 {
		e.logger.Sugar().Warn("no detailed breakdown from scorer, saving raw rows")
		detailed = rawRows(rows)
	}
	for i := range detailed {
		if i < len(rows) {
			detailed[i]["retrieval_scores"] = rows[i].RetrievalScores
		}
	}
	report.DetailedResults = detailed

	if e.outputPath != "" {
		if err := report.WriteJSON(e.outputPath); err != nil {
			return report, fmt.Errorf("saving report: %w", err)
		}
		e.logger.Sugar().Infof("results saved to %s", e.outputPath)
	}

	e.saveRun(ctx, report, len(cases), failures)

	return report, nil
}

// saveRun records the run summary when a store is configured. Failing to
// persist history never fails the evaluation itself.
func (e *Evaluator) saveRun(ctx context.Context, report *Report, cases, failures int) {
	if e.store == nil {
		return
	}

	run := &EvaluationRun{
		ID:         NewRunID(),
		Experiment: e.cfg.Experiment,
		Status:     report.Metadata.Status,
		Metrics:    report.Metrics,
		Cases:      cases,
		Failures:   failures,
		Created:    e.now(),
	}

	if err := e.store.SaveEvaluationRun(ctx, run); err != nil {
		e.logger.Sugar().Errorf("saving evaluation run: %v", err)
	}
}
