// internal/service/article/prompt.go

package article

import (
	"fmt"
	"strings"

	"trendwise/internal/domain/trend"
)

// BuildPrompt asks for a complete blog post about t, answered as a single
// JSON object
func BuildPrompt(t trend.Trend) string {
	category := t.Category
	if category == "" {
		category = defaultCategory
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write an original, well-researched blog article about the trending topic %q.\n", t.Title)
	fmt.Fprintf(&b, "Category: %s\n", category)
	if len(t.Keywords) > 0 {
		fmt.Fprintf(&b, "Focus keywords: %s\n", strings.Join(t.Keywords, ", "))
	}
	b.WriteString(`
Guidelines:
- 800 to 1200 words, written for a general audience.
- Explain what is happening, why it matters and what to watch next.
- Use the focus keywords naturally; do not stuff them.
- Format the body as HTML using <h2>, <h3>, <p>, <ul>, <li>, <strong> and <em> only. Do not include <h1>.
- Do not invent quotes or statistics.

Respond with a single JSON object and nothing else, using exactly these fields:
{
  "title": "headline of at most 60 characters",
  "metaDescription": "search snippet of at most 160 characters",
  "content": "the article body as HTML",
  "excerpt": "one or two sentence teaser of at most 200 characters",
  "tags": ["up to 8 short lowercase tags"]
}
`)
	return b.String()
}

// BuildImagePrompt describes a featured image for an article. The same
// inputs always produce the same prompt.
func BuildImagePrompt(title string, keywords []string, category string) string {
	if category == "" {
		category = defaultCategory
	}

	subject := strings.TrimSpace(title)
	if len(keywords) > 0 {
		n := len(keywords)
		if n > 3 {
			n = 3
		}
		subject = fmt.Sprintf("%s (%s)", subject, strings.Join(keywords[:n], ", "))
	}

	return fmt.Sprintf(
		"Editorial featured image for a %s news article about %s. "+
			"Photorealistic, natural lighting, wide 16:9 composition, no text, no logos, no watermarks.",
		strings.ToLower(category), subject,
	)
}
