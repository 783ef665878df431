package advisorbottest

import (
	"github.com/campusbot/advisorbot"
)

type PassageOption func(*advisorbot.Passage)

func WithPassageContent(content string) PassageOption {
	return func(p *advisorbot.Passage) {
		p.Content = content
	}
}

func WithPassageTitle(title string) PassageOption {
	return func(p *advisorbot.Passage) {
		p.Metadata["title"] = title
	}
}

func WithPassageURL(url string) PassageOption {
	return func(p *advisorbot.Passage) {
		p.Metadata["url"] = url
	}
}

func WithPassageTopic(topic string) PassageOption {
	return func(p *advisorbot.Passage) {
		p.Metadata["topic"] = topic
	}
}

func (g *DataGen) Passage(options ...PassageOption) advisorbot.Passage {
	aPassage := advisorbot.Passage{
		Content: g.Sentence(12),
		Metadata: advisorbot.Metadata{
			"title": g.Sentence(3),
			"url":   g.URL(),
		},
	}

	for _, o := range options {
		o(&aPassage)
	}

	return aPassage
}

func (g *DataGen) Passages(n int, options ...PassageOption) []advisorbot.Passage {
	passages := make([]advisorbot.Passage, 0, n)
	for i := 0; i < n; i++ {
		passages = append(passages, g.Passage(options...))
	}
	return passages
}
