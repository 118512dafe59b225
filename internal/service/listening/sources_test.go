package listening

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwise/internal/domain/trend"
)

type fakeGetter struct {
	mu    sync.Mutex
	body  []byte
	err   error
	calls []string
}

func (g *fakeGetter) Get(ctx context.Context, url, accept string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, url)
	return g.body, g.err
}

type fakeSource struct {
	name   string
	trends []trend.Trend
	delay  time.Duration
	panics bool

	mu    sync.Mutex
	calls int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context) []trend.Trend {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panics {
		panic("source exploded")
	}
	return s.trends
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestFeedSourceParsesBody(t *testing.T) {
	g := &fakeGetter{body: []byte(`{"items": [{"name": "foo", "description": "bar baz"}]}`)}
	src := NewFeedSource("repository-trending", "https://example.test/repos", AcceptJSON, g, RepositoryParser{Log: nop}, nop)

	got := src.Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "foo: bar baz", got[0].Title)
	assert.Equal(t, []string{"https://example.test/repos"}, g.calls)
	assert.Equal(t, "repository-trending", src.Name())
}

func TestFeedSourceSwallowsErrors(t *testing.T) {
	g := &fakeGetter{err: errors.New("connection refused")}
	src := NewFeedSource("reddit-popular", "https://example.test/r", AcceptJSON, g, RedditParser{Feed: RedditPopular, Log: nop}, nop)

	assert.Empty(t, src.Fetch(context.Background()))
}

func TestSearchTrendsSourceWithoutKeyMakesNoRequest(t *testing.T) {
	g := &fakeGetter{}
	src := NewSearchTrendsSource("https://serpapi.test/search.json", "", "", g, nop)

	assert.False(t, src.Configured())
	assert.Empty(t, src.Fetch(context.Background()))
	assert.Empty(t, g.calls)
}

func TestSearchTrendsSourceBuildsQuery(t *testing.T) {
	g := &fakeGetter{body: []byte(`{"trending_searches": [{"query": "Championship parade route"}]}`)}
	src := NewSearchTrendsSource("https://serpapi.test/search.json", "secret-key", "GB", g, nop)

	got := src.Fetch(context.Background())

	require.Len(t, got, 1)
	require.Len(t, g.calls, 1)
	u, err := url.Parse(g.calls[0])
	require.NoError(t, err)
	assert.Equal(t, "google_trends_trending_now", u.Query().Get("engine"))
	assert.Equal(t, "GB", u.Query().Get("geo"))
	assert.Equal(t, "secret-key", u.Query().Get("api_key"))
}

func TestRedactKey(t *testing.T) {
	err := redactKey(errors.New(`Get "https://x.test/?api_key=abc%2B1": timeout`), "abc+1")
	assert.NotContains(t, err.Error(), "abc")
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestSequentialTierStopsAtFirstNonEmpty(t *testing.T) {
	first := &fakeSource{name: "first"}
	second := &fakeSource{name: "second", trends: []trend.Trend{trend.NewTrend("Second source headline", "Popular", trend.SourceSocial, 90)}}
	third := &fakeSource{name: "third", trends: []trend.Trend{trend.NewTrend("Never reached headline", "Popular", trend.SourceSocial, 90)}}

	tier := NewSequentialTier("social", 0, nop, first, second, third)
	got := tier.Fetch(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Second source headline", got[0].Title)
	assert.Equal(t, 1, first.callCount())
	assert.Equal(t, 1, second.callCount())
	assert.Equal(t, 0, third.callCount())
}

func TestSequentialTierAllEmpty(t *testing.T) {
	tier := NewSequentialTier("social", 0, nop, &fakeSource{name: "a"}, &fakeSource{name: "b"})
	assert.Empty(t, tier.Fetch(context.Background()))
}

func TestSequentialTierPacesAttempts(t *testing.T) {
	tier := NewSequentialTier("social", 30*time.Millisecond, nop,
		&fakeSource{name: "a"}, &fakeSource{name: "b"}, &fakeSource{name: "c"})

	start := time.Now()
	tier.Fetch(context.Background())

	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestSequentialTierHonoursCancellation(t *testing.T) {
	last := &fakeSource{name: "b", trends: []trend.Trend{trend.NewTrend("Unreachable headline here", "Popular", trend.SourceSocial, 90)}}
	tier := NewSequentialTier("social", time.Minute, nop, &fakeSource{name: "a"}, last)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := tier.Fetch(ctx)

	assert.Empty(t, got)
	assert.Equal(t, 0, last.callCount())
	assert.Less(t, time.Since(start), 5*time.Second)
}
