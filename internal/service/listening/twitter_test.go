package listening

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendwise/internal/domain/trend"
)

func tweet(likes, retweets int, tags ...string) *twitter.TweetObj {
	entities := &twitter.EntitiesObj{}
	for _, tag := range tags {
		entities.HashTags = append(entities.HashTags, twitter.EntityTagObj{Tag: tag})
	}
	return &twitter.TweetObj{
		Text:          "tweet",
		Entities:      entities,
		PublicMetrics: &twitter.TweetMetricsObj{Likes: likes, Retweets: retweets},
	}
}

func TestHashtagTrendsRanksByEngagement(t *testing.T) {
	got := hashtagTrends([]*twitter.TweetObj{
		tweet(1, 0, "GoLang", "Kubernetes"),
		tweet(40, 10, "WorldCup"),
		tweet(3, 0, "golang", "golang"),
		nil,
		{Text: "no entities"},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "#WorldCup", got[0].Title)
	assert.Equal(t, "#GoLang", got[1].Title)
	assert.Equal(t, "#Kubernetes", got[2].Title)

	assert.Equal(t, []int{85, 81, 77}, []int{got[0].Score, got[1].Score, got[2].Score})
	for _, tr := range got {
		assert.Equal(t, trend.SourceSocial, tr.Source)
		assert.Equal(t, "Social", tr.Category)
	}
	assert.Equal(t, []string{"worldcup"}, got[0].Keywords)
}

func TestHashtagTrendsCapsAndFloors(t *testing.T) {
	var tweets []*twitter.TweetObj
	for i := 0; i < 12; i++ {
		tweets = append(tweets, tweet(100-i, 0, distinctWords[i]))
	}

	got := hashtagTrends(tweets)

	require.Len(t, got, twitterLimit)
	assert.Equal(t, "#"+distinctWords[0], got[0].Title)
	assert.Equal(t, 57, got[7].Score)
}

func TestTwitterSourceWithoutTokenMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	src := NewTwitterSource(TwitterConfig{Host: srv.URL}, srv.Client(), nop)

	assert.False(t, src.Configured())
	assert.Nil(t, src.Fetch(context.Background()))
	assert.Equal(t, int32(0), hits.Load())
}

func TestTwitterSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultTwitterQuery, r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{"id": "1", "text": "a", "public_metrics": {"like_count": 5, "retweet_count": 1},
				 "entities": {"hashtags": [{"start": 0, "end": 6, "tag": "Launch"}]}},
				{"id": "2", "text": "b", "public_metrics": {"like_count": 90, "retweet_count": 30},
				 "entities": {"hashtags": [{"start": 0, "end": 7, "tag": "Eclipse"}]}}
			],
			"meta": {"result_count": 2}
		}`))
	}))
	defer srv.Close()

	src := NewTwitterSource(TwitterConfig{BearerToken: "secret", Host: srv.URL}, srv.Client(), nop)
	got := src.Fetch(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, "#Eclipse", got[0].Title)
	assert.Equal(t, "#Launch", got[1].Title)
}

func TestTwitterSourceSwallowsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title": "Too Many Requests", "detail": "Too Many Requests", "type": "about:blank", "status": 429}`))
	}))
	defer srv.Close()

	src := NewTwitterSource(TwitterConfig{BearerToken: "secret", Host: srv.URL}, srv.Client(), nop)

	assert.Nil(t, src.Fetch(context.Background()))
}
