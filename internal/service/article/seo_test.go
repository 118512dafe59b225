package article

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World! 2024", "hello-world-2024"},
		{"  OpenAI's GPT-5: What We Know  ", "openai-s-gpt-5-what-we-know"},
		{"---", ""},
		{"Café au lait", "caf-au-lait"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}

	long := Slugify(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(long), MaxSlugLen)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestShorten(t *testing.T) {
	s := "The quick brown fox jumps"

	assert.Equal(t, s, Shorten(s, 40, true))
	assert.Equal(t, "The quick...", Shorten(s, 15, true))
	assert.Equal(t, "The quick brown", Shorten(s, 15, false))
	assert.Equal(t, "Supercalif...", Shorten("Supercalifragilistic", 13, true))
	assert.Equal(t, "", Shorten("abcdef", 2, true))
}

func TestShortenRespectsLimits(t *testing.T) {
	text := strings.Repeat("Markets rallied, then retreated; analysts shrugged. ", 20)

	for _, max := range []int{MaxTitleRunes, MaxMetaRunes, MaxExcerptRunes} {
		got := Shorten(text, max, true)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), max)
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.False(t, strings.HasSuffix(strings.TrimSuffix(got, "..."), ","))
	}
}

func TestReadingTime(t *testing.T) {
	words := func(n int) string { return strings.TrimSpace(strings.Repeat("word ", n)) }

	assert.Equal(t, 1, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime(words(10)))
	assert.Equal(t, 1, ReadingTime(words(200)))
	assert.Equal(t, 2, ReadingTime(words(201)))
	assert.Equal(t, 3, ReadingTime(words(450)))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" AI ", "ai", "#Tech", "", "machine   learning"}, nil)
	assert.Equal(t, []string{"ai", "tech", "machine learning"}, got)

	var many []string
	for i := 0; i < 12; i++ {
		many = append(many, fmt.Sprintf("tag%d", i))
	}
	assert.Len(t, NormalizeTags(many, nil), MaxTags)

	assert.Equal(t, []string{"openai", "launches"}, NormalizeTags([]string{"  "}, []string{"openai", "launches"}))
}

func TestSanitizer(t *testing.T) {
	s := NewSanitizer()

	html := s.HTML(`<h2>Intro</h2><p onclick="steal()">Hello <strong>there</strong></p><script>alert(1)</script>`)
	assert.Contains(t, html, "<h2>Intro</h2>")
	assert.Contains(t, html, "<strong>there</strong>")
	assert.NotContains(t, html, "script")
	assert.NotContains(t, html, "onclick")

	assert.Equal(t, "Title One & two", s.Text("<h2>Title</h2><p>One &amp; two</p>"))
}
