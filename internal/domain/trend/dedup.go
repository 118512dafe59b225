// internal/domain/trend/dedup.go

package trend

import (
	"regexp"
	"strings"
)

var nonAlphanumericPattern = regexp.MustCompile(`[^a-z0-9\s]+`)

// DedupRule decides when two titles describe the same topic.
// Titles are duplicates when their normalized forms are equal, or when both
// are longer than MinTitleLen and share at least MinSharedWords distinct words
// longer than MinWordLen.
type DedupRule struct {
	MinTitleLen    int
	MinWordLen     int
	MinSharedWords int
}

// DefaultDedupRule is the rule used by the aggregator
var DefaultDedupRule = DedupRule{
	MinTitleLen:    15,
	MinWordLen:     3,
	MinSharedWords: 2,
}

// NormalizeTitle lowercases, drops non-alphanumerics and collapses whitespace
func NormalizeTitle(title string) string {
	t := nonAlphanumericPattern.ReplaceAllString(strings.ToLower(title), "")
	return strings.Join(strings.Fields(t), " ")
}

// IsDuplicate reports whether titles a and b are near-duplicates
func (r DedupRule) IsDuplicate(a, b string) bool {
	return r.duplicateNormalized(NormalizeTitle(a), NormalizeTitle(b))
}

func (r DedupRule) duplicateNormalized(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) <= r.MinTitleLen || len(b) <= r.MinTitleLen {
		return false
	}

	inB := make(map[string]struct{})
	for _, w := range strings.Fields(b) {
		if len(w) > r.MinWordLen {
			inB[w] = struct{}{}
		}
	}

	shared := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		if _, ok := inB[w]; ok {
			shared[w] = struct{}{}
			if len(shared) >= r.MinSharedWords {
				return true
			}
		}
	}
	return false
}

// Deduplicate keeps the first occurrence of every group of near-duplicate
// records, preserving input order
func (r DedupRule) Deduplicate(trends []Trend) []Trend {
	kept := make([]Trend, 0, len(trends))
	keptTitles := make([]string, 0, len(trends))

	for _, t := range trends {
		norm := NormalizeTitle(t.Title)

		duplicate := false
		for _, seen := range keptTitles {
			if r.duplicateNormalized(norm, seen) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		kept = append(kept, t)
		keptTitles = append(keptTitles, norm)
	}
	return kept
}
