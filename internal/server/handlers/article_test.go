package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwise/internal/domain/article"
	"trendwise/internal/domain/trend"
)

type fakeGenerator struct {
	configured bool
	err        error
	got        trend.Trend
}

func (f *fakeGenerator) Configured() bool { return f.configured }

func (f *fakeGenerator) Generate(ctx context.Context, t trend.Trend) (*article.Article, error) {
	f.got = t
	if f.err != nil {
		return nil, f.err
	}
	return &article.Article{Title: t.Title, Slug: "slug", Category: t.Category}, nil
}

func postArticle(h *ArticleHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.CreateArticle(rec, req)
	return rec
}

func TestCreateArticleFromTitle(t *testing.T) {
	gen := &fakeGenerator{configured: true}
	h := NewArticleHandler(&fakeTrendService{}, gen, time.Second)

	rec := postArticle(h, `{"title": "  Mars sample return delayed ", "category": "Science"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mars sample return delayed", gen.got.Title)
	assert.Equal(t, "Science", gen.got.Category)

	var a article.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "Mars sample return delayed", a.Title)
}

func TestCreateArticleFromIndex(t *testing.T) {
	gen := &fakeGenerator{configured: true}
	h := NewArticleHandler(&fakeTrendService{trends: mixedTrends(3, 0)}, gen, time.Second)

	rec := postArticle(h, `{"index": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "search topic 2", gen.got.Title)

	assert.Equal(t, http.StatusBadRequest, postArticle(h, `{"index": 3}`).Code)
	assert.Equal(t, http.StatusBadRequest, postArticle(h, `{"index": -1}`).Code)
}

func TestCreateArticleBadRequests(t *testing.T) {
	h := NewArticleHandler(&fakeTrendService{}, &fakeGenerator{configured: true}, time.Second)

	assert.Equal(t, http.StatusBadRequest, postArticle(h, `{`).Code)
	assert.Equal(t, http.StatusBadRequest, postArticle(h, `{"title": "   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, postArticle(h, `{}`).Code)
}

func TestCreateArticleErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{article.ErrNotConfigured, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: no JSON object found", article.ErrInvalidResponse), http.StatusBadGateway},
		{fmt.Errorf("%w: 500 from provider", article.ErrGenerationFailed), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		h := NewArticleHandler(&fakeTrendService{}, &fakeGenerator{configured: true, err: tt.err}, time.Second)
		assert.Equal(t, tt.want, postArticle(h, `{"title": "Topic"}`).Code, tt.err.Error())
	}
}

func TestCreateArticleNotConfigured(t *testing.T) {
	h := NewArticleHandler(&fakeTrendService{}, &fakeGenerator{}, time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, postArticle(h, `{"title": "Topic"}`).Code)

	h = NewArticleHandler(&fakeTrendService{}, nil, time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, postArticle(h, `{"title": "Topic"}`).Code)
}
