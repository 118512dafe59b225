package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwise/internal/config"
	"trendwise/internal/domain/trend"
	"trendwise/internal/service/listening"
)

// upstream fails every live source except the Twitter search
type upstream struct {
	mu       sync.Mutex
	requests map[string]time.Time
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.requests[r.URL.Path] = time.Now()
	u.mu.Unlock()

	if r.URL.Path != "/2/tweets/search/recent" {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{
		"data": [{"id": "1", "text": "x", "public_metrics": {"like_count": 12},
		          "entities": {"hashtags": [{"start": 0, "end": 8, "tag": "Eclipse"}]}}],
		"meta": {"result_count": 1}
	}`))
}

func (u *upstream) requestedAt(path string) (time.Time, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	at, ok := u.requests[path]
	return at, ok
}

func TestInitAggregatorWiring(t *testing.T) {
	up := &upstream{requests: make(map[string]time.Time)}
	srv := httptest.NewServer(up)
	defer srv.Close()

	cfg := config.TrendConfig{
		SearchAPIURL:   srv.URL + "/search.json",
		TrendsFeedURL:  srv.URL + "/rss",
		RedditBaseURL:  srv.URL,
		RepositoryURL:  srv.URL + "/repos",
		TwitterToken:   "token",
		TwitterAPIURL:  srv.URL,
		RequestTimeout: time.Second,
		TierDelay:      50 * time.Millisecond,
	}
	agg := initAggregator(cfg, listening.NewSynthesizer(nil), zerolog.Nop())

	start := time.Now()
	got := agg.GetAllTrendingTopics(context.Background())

	// no key, so the search API is skipped but the feed still waits its turn
	_, searched := up.requestedAt("/search.json")
	assert.False(t, searched)
	feedAt, ok := up.requestedAt("/rss")
	require.True(t, ok)
	assert.GreaterOrEqual(t, feedAt.Sub(start), cfg.TierDelay)

	for _, path := range []string{"/r/popular/hot.json", "/r/technology/hot.json", "/r/worldnews/hot.json", "/repos"} {
		_, ok := up.requestedAt(path)
		assert.True(t, ok, path)
	}

	// twitter is the last social source and only ran because the rest failed
	require.Len(t, got, 12)
	var social []trend.Trend
	for _, tr := range got {
		if tr.Source == trend.SourceSocial {
			social = append(social, tr)
		}
	}
	require.Len(t, social, 1)
	assert.Equal(t, "#Eclipse", social[0].Title)
}
