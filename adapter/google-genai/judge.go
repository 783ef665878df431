package googlegenai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/campusbot/advisorbot"
)

var judgeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"faithfulness":       {Type: genai.TypeNumber},
		"answer_relevancy":   {Type: genai.TypeNumber},
		"context_recall":     {Type: genai.TypeNumber},
		"answer_correctness": {Type: genai.TypeNumber},
	},
	Required: []string{
		"faithfulness",
		"answer_relevancy",
		"context_recall",
		"answer_correctness",
	},
}

const judgeTemplate = `You are grading the output of a question answering system for university course advice.

Question:
%s

Retrieved context:
%s

Generated answer:
%s

Reference answer:
%s

Grade the generated answer on a scale from 0.0 to 1.0 for each criterion:
- faithfulness: every claim in the generated answer is supported by the retrieved context
- answer_relevancy: the generated answer addresses the question directly
- context_recall: the retrieved context contains the facts needed to produce the reference answer
- answer_correctness: the generated answer agrees factually with the reference answer

Respond with JSON only.`

// Score grades each row with the judge model and returns per-row metric
// values plus the mean of every metric across all rows. Row values are kept
// as json.Number so callers decide how to coerce them.
func (a *Adapter) Score(ctx context.Context, rows []advisorbot.EvaluationRow) (*advisorbot.ScoreResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to score")
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   judgeSchema,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: nil, // Disables thinking
		},
	}

	totals := make(map[string]float64, len(advisorbot.MetricNames))
	scoredRows := make([]map[string]any, 0, len(rows))

	for i, row := range rows {
		prompt := fmt.Sprintf(judgeTemplate,
			row.Question,
			strings.Join(row.Contexts, "\n"),
			row.Answer,
			row.GroundTruth,
		)

		resp, err := a.client.Models.GenerateContent(ctx, a.judgeModel, genai.Text(prompt), config)
		if err != nil {
			return nil, fmt.Errorf("judging row %d: %w", i, err)
		}
		if len(resp.Candidates) != 1 {
			return nil, fmt.Errorf("judging row %d: got %v candidates, expected 1", i, len(resp.Candidates))
		}

		grades, err := decodeGrades(resp.Text())
		if err != nil {
			return nil, fmt.Errorf("judging row %d: %w", i, err)
		}

		scoredRow := map[string]any{
			"question":     row.Question,
			"answer":       row.Answer,
			"contexts":     row.Contexts,
			"ground_truth": row.GroundTruth,
		}
		for _, name := range advisorbot.MetricNames {
			grade, ok := grades[name]
			if !ok {
				return nil, fmt.Errorf("judging row %d: missing %s grade", i, name)
			}
			value, err := grade.Float64()
			if err != nil {
				return nil, fmt.Errorf("judging row %d: invalid %s grade: %w", i, name, err)
			}
			totals[name] += value
			scoredRow[name] = grade
		}
		scoredRows = append(scoredRows, scoredRow)

		a.logger.With("row", i, "grades", grades).Debug("Judged row")
	}

	metrics := make(map[string]any, len(totals))
	for name, total := range totals {
		metrics[name] = total / float64(len(rows))
	}

	return &advisorbot.ScoreResult{
		Metrics: metrics,
		Rows:    scoredRows,
	}, nil
}

func decodeGrades(text string) (map[string]json.Number, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	decoder.UseNumber()

	grades := make(map[string]json.Number)
	if err := decoder.Decode(&grades); err != nil {
		return nil, fmt.Errorf("unmarshalling grades: %w", err)
	}
	return grades, nil
}
