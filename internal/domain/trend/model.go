// internal/domain/trend/model.go

package trend

import "strings"

// Source identifies the provenance of a trend record
type Source string

const (
	SourceSearchTrends Source = "search-trends"
	SourceSocial       Source = "social"
	SourceSynthesized  Source = "synthesized"
)

// ParseSource maps a query value to a Source, reporting whether it is known
func ParseSource(s string) (Source, bool) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceSearchTrends:
		return SourceSearchTrends, true
	case SourceSocial:
		return SourceSocial, true
	case SourceSynthesized:
		return SourceSynthesized, true
	}
	return "", false
}

// Trend is a single normalized trending topic
type Trend struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
	Source   Source   `json:"source"`
	Score    int      `json:"trendScore"`
}

// NewTrend builds a trend record, deriving its keywords from the title.
// When no keyword survives extraction the title itself is the only keyword.
func NewTrend(title, category string, source Source, score int) Trend {
	title = strings.TrimSpace(title)

	keywords := ExtractKeywords(title)
	if len(keywords) == 0 {
		keywords = []string{title}
	}

	return Trend{
		Title:    title,
		Keywords: keywords,
		Category: category,
		Source:   source,
		Score:    clampScore(score),
	}
}

// Scoring is a rank-based decay: Base - Step*index, never below Floor
type Scoring struct {
	Base  int
	Step  int
	Floor int
}

// ScoreAt returns the score of the record at position index in its source list
func (s Scoring) ScoreAt(index int) int {
	score := s.Base - s.Step*index
	if score < s.Floor {
		score = s.Floor
	}
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Filter narrows an aggregated list for presentation
type Filter struct {
	Source Source
	Limit  int
}

// Apply returns the records matching the filter, at most Limit of them
func (f Filter) Apply(trends []Trend) []Trend {
	out := make([]Trend, 0, len(trends))
	for _, t := range trends {
		if f.Source != "" && t.Source != f.Source {
			continue
		}
		out = append(out, t)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}
