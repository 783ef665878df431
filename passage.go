package advisorbot

import (
	"strings"
)

// Metadata carries source attributes of a retrieved passage, e.g. title,
// url and topics. After reranking it also holds the relevance score under
// the "score" key.
type Metadata map[string]any

func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func (m Metadata) Float(key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Passage is a retrieved unit of text together with its source metadata.
type Passage struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

func (p Passage) Sanitize() Passage {
	p.Content = strings.TrimSpace(p.Content)
	p.Content = strings.Join(strings.Fields(p.Content), " ")
	return p
}

const (
	defaultTitle = "Unknown"
	defaultURL   = "#"
)

func (p Passage) Title() string {
	if title := p.Metadata.String("title"); title != "" {
		return title
	}
	return defaultTitle
}

func (p Passage) URL() string {
	if url := p.Metadata.String("url"); url != "" {
		return url
	}
	if source := p.Metadata.String("source"); source != "" {
		return source
	}
	return defaultURL
}

func (p Passage) Score() float64 {
	return p.Metadata.Float("score")
}

// Source describes a passage that backed a generated answer. Content is
// included for diagnostic display only.
type Source struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

func sourcesFromPassages(passages []Passage) []Source {
	sources := make([]Source, 0, len(passages))
	for _, aPassage := range passages {
		sources = append(sources, Source{
			Title:   aPassage.Title(),
			URL:     aPassage.URL(),
			Score:   aPassage.Score(),
			Content: aPassage.Content,
		})
	}
	return sources
}
