// internal/service/article/generator.go

package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trendwise/internal/domain/article"
	"trendwise/internal/domain/trend"
)

// Generator turns a trending topic into a publishable article
type Generator struct {
	text      article.TextGenerator
	images    *ImageResolver
	sanitizer *Sanitizer
	now       func() time.Time
	log       zerolog.Logger
}

// NewGenerator creates an article generator. A nil text generator leaves the
// generator unconfigured; a nil resolver serves placeholder images.
func NewGenerator(text article.TextGenerator, images *ImageResolver, now func() time.Time, log zerolog.Logger) *Generator {
	if now == nil {
		now = time.Now
	}
	if images == nil {
		images = NewImageResolver(nil, ImageResolverConfig{}, now, log)
	}

	return &Generator{
		text:      text,
		images:    images,
		sanitizer: NewSanitizer(),
		now:       now,
		log:       log.With().Str("component", "article_generator").Logger(),
	}
}

// Configured reports whether a text generator is available
func (g *Generator) Configured() bool {
	return g.text != nil
}

// Generate writes an article about t
func (g *Generator) Generate(ctx context.Context, t trend.Trend) (*article.Article, error) {
	if !g.Configured() {
		return nil, article.ErrNotConfigured
	}

	start := g.now()
	raw, err := g.text.GenerateJSON(ctx, BuildPrompt(t))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", article.ErrGenerationFailed, err)
	}

	draft, err := ParseResponse(raw)
	if err != nil {
		g.log.Warn().Err(err).Str("trend", t.Title).Msg("unusable generator response")
		return nil, err
	}

	a, err := g.assemble(t, draft)
	if err != nil {
		return nil, err
	}

	a.Image = g.images.Resolve(ctx, a.ImagePrompt, a.Title, t.Keywords)

	g.log.Info().
		Str("slug", a.Slug).
		Str("trend", t.Title).
		Str("image_tier", string(a.Image.Tier)).
		Dur("took", g.now().Sub(start)).
		Msg("article generated")

	return a, nil
}

// assemble applies the search-engine limits and sanitizes the draft
func (g *Generator) assemble(t trend.Trend, d article.Draft) (*article.Article, error) {
	content := g.sanitizer.HTML(d.Content)
	plain := g.sanitizer.Text(content)
	if plain == "" {
		return nil, fmt.Errorf("%w: content is empty after sanitizing", article.ErrInvalidResponse)
	}

	title := Shorten(g.sanitizer.Text(d.Title), MaxTitleRunes, false)
	if title == "" {
		return nil, fmt.Errorf("%w: title is empty after sanitizing", article.ErrInvalidResponse)
	}

	meta := g.sanitizer.Text(d.MetaDescription)
	if meta == "" {
		meta = plain
	}
	excerpt := g.sanitizer.Text(d.Excerpt)
	if excerpt == "" {
		excerpt = plain
	}

	category := t.Category
	if category == "" {
		category = defaultCategory
	}

	id := uuid.New().String()
	slug := Slugify(title)
	if slug == "" {
		slug = "article-" + id[:8]
	}

	return &article.Article{
		ID:                 id,
		Title:              title,
		Slug:               slug,
		MetaDescription:    Shorten(meta, MaxMetaRunes, true),
		Content:            content,
		Excerpt:            Shorten(excerpt, MaxExcerptRunes, true),
		Tags:               NormalizeTags(d.Tags, t.Keywords),
		Category:           category,
		ReadingTimeMinutes: ReadingTime(plain),
		ImagePrompt:        BuildImagePrompt(title, t.Keywords, category),
		SourceTrend:        t.Title,
		CreatedAt:          g.now().UTC(),
	}, nil
}
