// internal/service/article/image.go

package article

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trendwise/internal/adapter/cache"
	"trendwise/internal/domain/article"
)

// Defaults for the image resolver tiers
const (
	DefaultStockBaseURL       = "https://source.unsplash.com/1200x630/"
	DefaultPlaceholderBaseURL = "https://placehold.co"
	DefaultImageHealthTTL     = 15 * time.Minute

	generatorHealthKey = "image-generator"
	stockKeywords      = 3
)

// ImageResolverConfig contains configuration for the image resolver
type ImageResolverConfig struct {
	GenerateImages     bool
	StockBaseURL       string
	PlaceholderBaseURL string
	HealthTTL          time.Duration
}

// ImageResolver picks a featured image, degrading from a generated image to a
// stock photo to a placeholder. It never fails.
type ImageResolver struct {
	generator article.ImageGenerator
	config    ImageResolverConfig
	unhealthy *cache.TTLCache[bool]
	log       zerolog.Logger
}

// NewImageResolver creates an image resolver. generator may be nil.
func NewImageResolver(generator article.ImageGenerator, config ImageResolverConfig, now func() time.Time, log zerolog.Logger) *ImageResolver {
	if config.PlaceholderBaseURL == "" {
		config.PlaceholderBaseURL = DefaultPlaceholderBaseURL
	}
	if config.HealthTTL <= 0 {
		config.HealthTTL = DefaultImageHealthTTL
	}

	return &ImageResolver{
		generator: generator,
		config:    config,
		unhealthy: cache.NewTTLCache[bool](config.HealthTTL, now),
		log:       log.With().Str("component", "image_resolver").Logger(),
	}
}

// Resolve returns the best available image for an article
func (r *ImageResolver) Resolve(ctx context.Context, prompt, title string, keywords []string) article.Image {
	if u, ok := r.generate(ctx, prompt); ok {
		return article.Image{URL: u, Alt: title, Tier: article.ImageTierGenerated}
	}
	if u, ok := r.stock(keywords); ok {
		return article.Image{URL: u, Alt: title, Tier: article.ImageTierStock}
	}
	return article.Image{URL: r.placeholder(title), Alt: title, Tier: article.ImageTierPlaceholder}
}

func (r *ImageResolver) generate(ctx context.Context, prompt string) (string, bool) {
	if !r.config.GenerateImages || r.generator == nil {
		return "", false
	}
	if _, down := r.unhealthy.Get(generatorHealthKey); down {
		return "", false
	}

	u, err := r.generator.GenerateImage(ctx, prompt)
	if err != nil || u == "" {
		r.unhealthy.Set(generatorHealthKey, true)
		r.log.Warn().Err(err).Dur("retry_after", r.config.HealthTTL).Msg("image generation failed, falling back")
		return "", false
	}
	return u, true
}

func (r *ImageResolver) stock(keywords []string) (string, bool) {
	if r.config.StockBaseURL == "" {
		return "", false
	}

	terms := make([]string, 0, stockKeywords)
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			terms = append(terms, k)
		}
		if len(terms) == stockKeywords {
			break
		}
	}
	if len(terms) == 0 {
		return "", false
	}

	return r.config.StockBaseURL + "?" + url.QueryEscape(strings.Join(terms, ",")), true
}

func (r *ImageResolver) placeholder(title string) string {
	text := Shorten(title, 40, false)
	if text == "" {
		text = "TrendWise"
	}
	base := strings.TrimRight(r.config.PlaceholderBaseURL, "/")
	return base + "/1200x630?text=" + url.QueryEscape(text)
}
