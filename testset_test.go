package advisorbot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTestCases(t *testing.T) {
	t.Parallel()

	csvData := `ID,Question,Ground_Truth,Notes
1," What is the pass mark? ",The pass mark is 50%.,checked
2,Can I defer?,"Yes, with approval.",
`

	cases, err := ReadTestCases(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, cases, 2)

	// Values are trimmed, extra columns ignored
	assert.Equal(t, "What is the pass mark?", cases[0].Question)
	assert.Equal(t, "The pass mark is 50%.", cases[0].GroundTruth)
	assert.Equal(t, "Yes, with approval.", cases[1].GroundTruth)
}

func TestReadTestCasesMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := ReadTestCases(strings.NewReader("Question,Answer\nq,a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ground_Truth")

	_, err = ReadTestCases(strings.NewReader("Prompt,Ground_Truth\nq,a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Question")
}

func TestReadTestCasesShortRow(t *testing.T) {
	t.Parallel()

	_, err := ReadTestCases(strings.NewReader("Question,Ground_Truth\nonly-question\n"))
	require.Error(t, err)
}

func TestReadTestCasesEmpty(t *testing.T) {
	t.Parallel()

	cases, err := ReadTestCases(strings.NewReader("Question,Ground_Truth\n"))
	require.NoError(t, err)
	assert.Empty(t, cases)
}
