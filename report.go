package advisorbot

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// MetricNames lists the quality metrics a scorer is expected to produce.
var MetricNames = []string{
	"faithfulness",
	"answer_relevancy",
	"context_recall",
	"answer_correctness",
}

const (
	StatusSuccess       = "Success"
	StatusScoringFailed = "ScoringFailed"
)

type ReportMetadata struct {
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	Pipeline  string `json:"pipeline"`
}

// Report bundles everything one evaluation run produced. All numeric
// values are plain floats; never mutated after creation.
type Report struct {
	Metadata        ReportMetadata     `json:"metadata"`
	Configuration   Config             `json:"configuration"`
	Metrics         map[string]float64 `json:"metrics"`
	DetailedResults []map[string]any   `json:"detailed_results"`
}

func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// extractMetric pulls one aggregate metric out of a scorer result,
// normalizing whatever numeric representation the backend used. Returns
// zero and false when the metric is missing or unusable.
func extractMetric(metrics map[string]any, name string) (float64, bool) {
	if metrics == nil {
		return 0, false
	}
	v, ok := metrics[name]
	if !ok {
		return 0, false
	}
	return toFloat64(v)
}

func toFloat64(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case []float64:
		return mean(value), len(value) > 0
	case []any:
		floats := make([]float64, 0, len(value))
		for _, item := range value {
			f, ok := toFloat64(item)
			if !ok {
				return 0, false
			}
			floats = append(floats, f)
		}
		return mean(floats), len(floats) > 0
	}
	return 0, false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// normalizeValue converts backend-specific numeric wrappers into ordinary
// floats, integers or lists of floats so the report serializes as standard
// JSON numbers. Non-numeric values pass through unchanged.
func normalizeValue(v any) any {
	switch value := v.(type) {
	case float32:
		return float64(value)
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	case []float32:
		floats := make([]float64, 0, len(value))
		for _, f := range value {
			floats = append(floats, float64(f))
		}
		return floats
	case []any:
		normalized := make([]any, 0, len(value))
		for _, item := range value {
			normalized = append(normalized, normalizeValue(item))
		}
		return normalized
	case map[string]any:
		normalized := make(map[string]any, len(value))
		for k, item := range value {
			normalized[k] = normalizeValue(item)
		}
		return normalized
	}
	return v
}

func normalizeRows(rows []map[string]any) []map[string]any {
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalizedRow := make(map[string]any, len(row))
		for k, v := range row {
			normalizedRow[k] = normalizeValue(v)
		}
		normalized = append(normalized, normalizedRow)
	}
	return normalized
}

// rawRows is the fallback detailed breakdown when the scorer provides
// none: just the question, answer and ground truth of every row.
func rawRows(rows []EvaluationRow) []map[string]any {
	raw := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, map[string]any{
			"question":     row.Question,
			"answer":       row.Answer,
			"ground_truth": row.GroundTruth,
		})
	}
	return raw
}

// WriteEmergencyCSV dumps answered rows to disk so a scoring failure never
// loses the generated answers.
func WriteEmergencyCSV(path string, rows []EvaluationRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating emergency dump: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"question", "answer", "contexts", "ground_truth"}); err != nil {
		return err
	}
	for _, row := range rows {
		contexts, err := json.Marshal(row.Contexts)
		if err != nil {
			return fmt.Errorf("marshaling contexts: %w", err)
		}
		if err := w.Write([]string{row.Question, row.Answer, string(contexts), row.GroundTruth}); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}
