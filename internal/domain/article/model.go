// internal/domain/article/model.go

package article

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured is returned when no text generator is available
	ErrNotConfigured = errors.New("article generation is not configured")

	// ErrInvalidResponse is returned when the generator output cannot be used
	ErrInvalidResponse = errors.New("invalid generator response")

	// ErrGenerationFailed is returned when the generator call itself fails
	ErrGenerationFailed = errors.New("article generation failed")
)

// ImageTier records which resolver tier produced an image
type ImageTier string

const (
	ImageTierGenerated   ImageTier = "generated"
	ImageTierStock       ImageTier = "stock"
	ImageTierPlaceholder ImageTier = "placeholder"
)

// Image is the featured image of an article
type Image struct {
	URL  string    `json:"url"`
	Alt  string    `json:"alt"`
	Tier ImageTier `json:"tier"`
}

// Article is a generated, SEO-ready post about one trending topic
type Article struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Slug               string    `json:"slug"`
	MetaDescription    string    `json:"metaDescription"`
	Content            string    `json:"content"`
	Excerpt            string    `json:"excerpt"`
	Tags               []string  `json:"tags"`
	Category           string    `json:"category"`
	ReadingTimeMinutes int       `json:"readingTimeMinutes"`
	ImagePrompt        string    `json:"imagePrompt"`
	Image              Image     `json:"image"`
	SourceTrend        string    `json:"sourceTrend"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Draft is the raw article as returned by a text generator
type Draft struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	Tags            []string `json:"tags"`
}

// TextGenerator produces a JSON document from a prompt
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces an image URL from a prompt
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
