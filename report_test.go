package advisorbot

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title    string
		given    any
		expected float64
		ok       bool
	}{
		{"Float64", 0.5, 0.5, true},
		{"Float32", float32(0.25), 0.25, true},
		{"Int", 1, 1, true},
		{"Int64", int64(2), 2, true},
		{"JSON number", json.Number("0.91"), 0.91, true},
		{"Invalid JSON number", json.Number("abc"), 0, false},
		{"Numeric string", "0.75", 0.75, true},
		{"Non-numeric string", "high", 0, false},
		{"Float slice mean", []float64{0.2, 0.4}, 0.3, true},
		{"Any slice mean", []any{json.Number("0.2"), float32(0.4)}, 0.3, true},
		{"Empty slice", []float64{}, 0, false},
		{"Slice with junk", []any{0.2, "junk"}, 0, false},
		{"Nil", nil, 0, false},
		{"Bool", true, 0, false},
	}

	for i, tst := range tests {
		t.Run(fmt.Sprintf("#%v_%v", i, tst.title), func(t *testing.T) {
			t.Parallel()

			actual, ok := toFloat64(tst.given)
			assert.Equal(t, tst.ok, ok)
			if tst.ok {
				assert.InDelta(t, tst.expected, actual, 1e-6)
			}
		})
	}
}

func TestExtractMetric(t *testing.T) {
	t.Parallel()

	metrics := map[string]any{
		"faithfulness": json.Number("0.9"),
	}

	value, ok := extractMetric(metrics, "faithfulness")
	assert.True(t, ok)
	assert.Equal(t, 0.9, value)

	_, ok = extractMetric(metrics, "answer_relevancy")
	assert.False(t, ok)

	_, ok = extractMetric(nil, "faithfulness")
	assert.False(t, ok)
}

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title    string
		given    any
		expected any
	}{
		{"Float32", float32(0.5), 0.5},
		{"JSON number", json.Number("0.91"), 0.91},
		{"Malformed JSON number", json.Number("nan?"), "nan?"},
		{"Float32 slice", []float32{0.5, 0.25}, []float64{0.5, 0.25}},
		{"Nested any slice", []any{float32(0.5), json.Number("1")}, []any{0.5, float64(1)}},
		{"Nested map", map[string]any{"score": json.Number("0.5")}, map[string]any{"score": 0.5}},
		{"String passthrough", "unchanged", "unchanged"},
		{"Int passthrough", 3, 3},
	}

	for i, tst := range tests {
		t.Run(fmt.Sprintf("#%v_%v", i, tst.title), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tst.expected, normalizeValue(tst.given))
		})
	}
}

func TestNormalizeRows(t *testing.T) {
	t.Parallel()

	rows := []map[string]any{
		{
			"question":     "q1",
			"faithfulness": json.Number("0.9"),
			"scores":       []float32{0.1, 0.2},
		},
	}

	normalized := normalizeRows(rows)
	require.Len(t, normalized, 1)
	assert.Equal(t, "q1", normalized[0]["question"])
	assert.Equal(t, 0.9, normalized[0]["faithfulness"])
	assert.Equal(t, []float64{0.1, 0.2}, normalized[0]["scores"])
}

func TestRawRows(t *testing.T) {
	t.Parallel()

	rows := []EvaluationRow{
		{Question: "q1", Answer: "a1", GroundTruth: "g1", Contexts: []string{"c1"}},
	}

	raw := rawRows(rows)
	require.Len(t, raw, 1)
	assert.Equal(t, map[string]any{
		"question":     "q1",
		"answer":       "a1",
		"ground_truth": "g1",
	}, raw[0])
}
