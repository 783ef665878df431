package advisorbot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassageSanitize(t *testing.T) {
	t.Parallel()

	p := Passage{Content: "  The pass\tmark \n is  50%.  "}
	assert.Equal(t, "The pass mark is 50%.", p.Sanitize().Content)
}

func TestPassageSourceDescriptors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title         string
		given         Passage
		expectedTitle string
		expectedURL   string
	}{
		{
			"Full metadata",
			Passage{Metadata: Metadata{"title": "Regulations", "url": "https://example.edu"}},
			"Regulations",
			"https://example.edu",
		},
		{
			"No metadata",
			Passage{},
			"Unknown",
			"#",
		},
		{
			"Source key stands in for url",
			Passage{Metadata: Metadata{"source": "handbook.pdf"}},
			"Unknown",
			"handbook.pdf",
		},
		{
			"Non-string values ignored",
			Passage{Metadata: Metadata{"title": 42, "url": true}},
			"Unknown",
			"#",
		},
	}

	for i, tst := range tests {
		t.Run(fmt.Sprintf("#%v_%v", i, tst.title), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tst.expectedTitle, tst.given.Title())
			assert.Equal(t, tst.expectedURL, tst.given.URL())
		})
	}
}

func TestMetadataFloat(t *testing.T) {
	t.Parallel()

	m := Metadata{"a": 0.5, "b": float32(0.25), "c": 2, "d": "nope"}

	assert.Equal(t, 0.5, m.Float("a"))
	assert.Equal(t, 0.25, m.Float("b"))
	assert.Equal(t, float64(2), m.Float("c"))
	assert.Equal(t, float64(0), m.Float("d"))
	assert.Equal(t, float64(0), m.Float("missing"))
	assert.Equal(t, float64(0), Metadata(nil).Float("a"))
}
