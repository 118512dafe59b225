// internal/service/article/parse.go

package article

import (
	"encoding/json"
	"fmt"
	"strings"

	"trendwise/internal/domain/article"
)

// ParseResponse extracts the article draft from generator output. Markdown
// code fences and any text around the outermost JSON object are ignored.
func ParseResponse(raw string) (article.Draft, error) {
	body := stripFences(raw)

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return article.Draft{}, fmt.Errorf("%w: no JSON object found", article.ErrInvalidResponse)
	}

	var draft article.Draft
	if err := json.Unmarshal([]byte(body[start:end+1]), &draft); err != nil {
		return article.Draft{}, fmt.Errorf("%w: %v", article.ErrInvalidResponse, err)
	}

	draft.Title = strings.TrimSpace(draft.Title)
	draft.Content = strings.TrimSpace(draft.Content)
	if draft.Title == "" {
		return article.Draft{}, fmt.Errorf("%w: missing title", article.ErrInvalidResponse)
	}
	if draft.Content == "" {
		return article.Draft{}, fmt.Errorf("%w: missing content", article.ErrInvalidResponse)
	}

	draft.MetaDescription = strings.TrimSpace(draft.MetaDescription)
	draft.Excerpt = strings.TrimSpace(draft.Excerpt)
	return draft, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// drop the opening fence line, which may carry a language tag
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
