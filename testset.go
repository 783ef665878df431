package advisorbot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Test set column names. Kept verbatim from the labeled spreadsheet the
// test data is exported from.
const (
	questionColumn    = "Question"
	groundTruthColumn = "Ground_Truth"
)

// LoadTestCases reads a labeled test set from a CSV file with at least a
// Question and a Ground_Truth column. Extra columns are ignored.
func LoadTestCases(path string) ([]TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening test set: %w", err)
	}
	defer f.Close()

	return ReadTestCases(f)
}

func ReadTestCases(r io.Reader) ([]TestCase, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	questionIdx, groundTruthIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case questionColumn:
			questionIdx = i
		case groundTruthColumn:
			groundTruthIdx = i
		}
	}
	if questionIdx < 0 {
		return nil, fmt.Errorf("missing column: %s", questionColumn)
	}
	if groundTruthIdx < 0 {
		return nil, fmt.Errorf("missing column: %s", groundTruthColumn)
	}

	var cases []TestCase
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if questionIdx >= len(record) || groundTruthIdx >= len(record) {
			return nil, fmt.Errorf("row has %d fields, expected at least %d", len(record), max(questionIdx, groundTruthIdx)+1)
		}

		cases = append(cases, TestCase{
			Question:    strings.TrimSpace(record[questionIdx]),
			GroundTruth: strings.TrimSpace(record[groundTruthIdx]),
		})
	}

	return cases, nil
}
