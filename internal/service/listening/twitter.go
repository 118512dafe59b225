// internal/service/listening/twitter.go

package listening

import (
	"context"
	"net/http"
	"sort"
	"strings"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/rs/zerolog"

	"trendwise/internal/domain/trend"
)

// Twitter defaults
const (
	DefaultTwitterHost  = "https://api.twitter.com"
	DefaultTwitterQuery = "has:hashtags -is:retweet -is:reply lang:en"

	twitterLimit      = 8
	twitterMaxResults = 100
	twitterCategory   = "Social"
)

// TwitterScoring ranks hashtag topics by engagement
var TwitterScoring = trend.Scoring{Base: 85, Step: 4, Floor: 55}

// TwitterConfig contains configuration for the Twitter source
type TwitterConfig struct {
	BearerToken string
	Host        string
	Query       string
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// TwitterSource turns the hashtags of recent popular tweets into social
// topics. Without a bearer token it makes no request.
type TwitterSource struct {
	client *twitter.Client
	config TwitterConfig
	log    zerolog.Logger
}

// NewTwitterSource creates the Twitter source
func NewTwitterSource(config TwitterConfig, httpClient *http.Client, log zerolog.Logger) *TwitterSource {
	if config.Host == "" {
		config.Host = DefaultTwitterHost
	}
	if config.Query == "" {
		config.Query = DefaultTwitterQuery
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &TwitterSource{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: config.BearerToken},
			Client:     httpClient,
			Host:       strings.TrimRight(config.Host, "/"),
		},
		config: config,
		log:    log,
	}
}

// Name implements Source
func (s *TwitterSource) Name() string {
	return "twitter-hashtags"
}

// Configured reports whether a bearer token is present
func (s *TwitterSource) Configured() bool {
	return s.config.BearerToken != ""
}

// Fetch implements Source
func (s *TwitterSource) Fetch(ctx context.Context) []trend.Trend {
	if !s.Configured() {
		s.log.Info().Str("source", s.Name()).Msg("twitter bearer token not configured, skipping source")
		return nil
	}

	resp, err := s.client.TweetRecentSearch(ctx, s.config.Query, twitter.TweetRecentSearchOpts{
		TweetFields: []twitter.TweetField{twitter.TweetFieldPublicMetrics, twitter.TweetFieldEntities},
		MaxResults:  twitterMaxResults,
	})
	if err != nil {
		s.log.Warn().Str("source", s.Name()).Err(err).Msg("source fetch failed")
		return nil
	}
	if resp == nil || resp.Raw == nil {
		return nil
	}

	trends := hashtagTrends(resp.Raw.Tweets)
	s.log.Debug().Str("source", s.Name()).Int("count", len(trends)).Msg("source fetched")
	return trends
}

type hashtagTally struct {
	tag    string
	weight int
	order  int
}

// hashtagTrends ranks hashtags by the engagement of the tweets carrying them.
// Tags are matched case-insensitively; the first spelling seen is kept.
func hashtagTrends(tweets []*twitter.TweetObj) []trend.Trend {
	tallies := make(map[string]*hashtagTally)
	for _, tw := range tweets {
		if tw == nil || tw.Entities == nil {
			continue
		}

		weight := 1
		if m := tw.PublicMetrics; m != nil {
			weight += m.Likes + 2*m.Retweets + m.Replies + m.Quotes
		}

		seen := make(map[string]bool)
		for _, h := range tw.Entities.HashTags {
			tag := strings.TrimSpace(h.Tag)
			key := strings.ToLower(tag)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			t, ok := tallies[key]
			if !ok {
				t = &hashtagTally{tag: tag, order: len(tallies)}
				tallies[key] = t
			}
			t.weight += weight
		}
	}

	ranked := make([]*hashtagTally, 0, len(tallies))
	for _, t := range tallies {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].order < ranked[j].order
	})
	if len(ranked) > twitterLimit {
		ranked = ranked[:twitterLimit]
	}

	trends := make([]trend.Trend, 0, len(ranked))
	for i, t := range ranked {
		trends = append(trends, trend.NewTrend("#"+t.tag, twitterCategory, trend.SourceSocial, TwitterScoring.ScoreAt(i)))
	}
	return trends
}
