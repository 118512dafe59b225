// internal/service/article/seo.go

package article

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Search-engine limits applied to every generated article
const (
	MaxTitleRunes   = 60
	MaxMetaRunes    = 160
	MaxExcerptRunes = 200
	MaxSlugLen      = 80
	MaxTags         = 8
	WordsPerMinute  = 200

	ellipsis        = "..."
	defaultCategory = "General"
)

var slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and joins its alphanumeric runs with hyphens
func Slugify(title string) string {
	slug := slugSeparator.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxSlugLen {
		slug = strings.TrimRight(slug[:MaxSlugLen], "-")
	}
	return slug
}

// Shorten cuts s to at most max runes, preferring a word boundary.
// With mark set the cut is flagged with "..." which counts towards max.
func Shorten(s string, max int, mark bool) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	limit := max
	if mark {
		limit -= utf8.RuneCountInString(ellipsis)
	}
	if limit <= 0 {
		return ""
	}

	runes := []rune(s)
	cut := string(runes[:limit])
	if !unicode.IsSpace(runes[limit]) {
		if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
			cut = cut[:i]
		}
	}
	cut = strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})

	if mark {
		return cut + ellipsis
	}
	return cut
}

// ReadingTime estimates minutes to read text, never less than one
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// NormalizeTags lowercases, trims and deduplicates tags, keeping at most
// MaxTags. When no tag survives, fallback is used instead.
func NormalizeTags(tags, fallback []string) []string {
	out := normalizeTags(tags)
	if len(out) == 0 {
		out = normalizeTags(fallback)
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, MaxTags)
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(strings.ToLower(tag)), " ")
		tag = strings.Trim(tag, "#")
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// Sanitizer cleans generated HTML
type Sanitizer struct {
	content *bluemonday.Policy
	text    *bluemonday.Policy
}

// NewSanitizer creates a sanitizer allowing user-generated-content markup
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		content: bluemonday.UGCPolicy(),
		text:    bluemonday.StrictPolicy(),
	}
}

// HTML removes scripts, handlers and anything else unsafe from s
func (s *Sanitizer) HTML(in string) string {
	return strings.TrimSpace(s.content.Sanitize(in))
}

// Text strips all markup from s and collapses whitespace
func (s *Sanitizer) Text(in string) string {
	// block boundaries must not glue words together once tags are gone
	in = strings.NewReplacer("<", " <", ">", "> ").Replace(in)
	plain := html.UnescapeString(s.text.Sanitize(in))
	return strings.Join(strings.Fields(plain), " ")
}
