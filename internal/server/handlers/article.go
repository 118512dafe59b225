// internal/server/handlers/article.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"trendwise/internal/domain/article"
	"trendwise/internal/domain/trend"
)

const maxArticleRequestBytes = 64 << 10

// ArticleGenerator writes articles about trending topics
type ArticleGenerator interface {
	Configured() bool
	Generate(ctx context.Context, t trend.Trend) (*article.Article, error)
}

// ArticleRequest names the topic to write about: either a free title or the
// position of a topic in the current trend list
type ArticleRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Index    *int   `json:"index"`
}

// ArticleHandler handles article generation requests
type ArticleHandler struct {
	trends    trend.Service
	generator ArticleGenerator
	timeout   time.Duration
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(trends trend.Service, generator ArticleGenerator, timeout time.Duration) *ArticleHandler {
	return &ArticleHandler{
		trends:    trends,
		generator: generator,
		timeout:   timeout,
	}
}

// CreateArticle generates an article for the requested topic
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil || !h.generator.Configured() {
		respondWithError(w, r, http.StatusServiceUnavailable, "Article generation is not configured", nil)
		return
	}

	var req ArticleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxArticleRequestBytes)).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	topic, status, msg := h.resolveTopic(r, req)
	if status != 0 {
		respondWithError(w, r, status, msg, nil)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	a, err := h.generator.Generate(ctx, topic)
	if err != nil {
		switch {
		case errors.Is(err, article.ErrNotConfigured):
			respondWithError(w, r, http.StatusServiceUnavailable, "Article generation is not configured", nil)
		case errors.Is(err, article.ErrInvalidResponse):
			respondWithError(w, r, http.StatusBadGateway, "Generator returned an unusable article", err)
		case errors.Is(err, article.ErrGenerationFailed):
			respondWithError(w, r, http.StatusBadGateway, "Article generation failed", err)
		case errors.Is(err, context.DeadlineExceeded):
			respondWithError(w, r, http.StatusGatewayTimeout, "Article generation timed out", err)
		default:
			respondWithError(w, r, http.StatusInternalServerError, "Failed to generate article", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, a)
}

// resolveTopic returns the trend to write about, or a client error status
func (h *ArticleHandler) resolveTopic(r *http.Request, req ArticleRequest) (trend.Trend, int, string) {
	if req.Index != nil {
		trends, err := h.trends.Trends(r.Context())
		if err != nil {
			return trend.Trend{}, http.StatusInternalServerError, "Failed to get trends"
		}
		if *req.Index < 0 || *req.Index >= len(trends) {
			return trend.Trend{}, http.StatusBadRequest, "Trend index out of range"
		}
		return trends[*req.Index], 0, ""
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return trend.Trend{}, http.StatusBadRequest, "Missing title or index"
	}
	return trend.NewTrend(title, strings.TrimSpace(req.Category), "", 0), 0, ""
}
