// internal/domain/trend/keywords.go

package trend

import (
	"regexp"
	"strings"
)

// MaxKeywords is the most keywords kept per title
const MaxKeywords = 5

var nonWordPattern = regexp.MustCompile(`[^a-z0-9]+`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "had": {}, "has": {}, "have": {}, "this": {}, "that": {},
	"with": {}, "from": {}, "they": {}, "been": {}, "were": {}, "will": {},
	"what": {}, "when": {}, "your": {}, "how": {}, "why": {}, "who": {},
	"new": {}, "now": {}, "its": {}, "into": {}, "about": {}, "after": {},
	"today": {}, "just": {},
}

// ExtractKeywords returns up to MaxKeywords salient lowercase tokens of title,
// in their original order
func ExtractKeywords(title string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(title), " ")

	keywords := make([]string, 0, MaxKeywords)
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

// IsStopword reports whether word is in the stopword list
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
