// internal/service/listening/sources.go

package listening

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trendwise/internal/domain/trend"
)

// DefaultTierDelay paces consecutive attempts within a sequential tier
const DefaultTierDelay = time.Second

// Source is one provider of trend records. Fetch never fails: an unavailable
// source yields no records.
type Source interface {
	Name() string
	Fetch(ctx context.Context) []trend.Trend
}

// Getter performs a GET request and returns the body
type Getter interface {
	Get(ctx context.Context, url, accept string) ([]byte, error)
}

// FeedSource fetches one public endpoint and parses it
type FeedSource struct {
	name   string
	url    string
	accept string
	getter Getter
	parser Parser
	log    zerolog.Logger
}

// NewFeedSource creates a source over a public unauthenticated endpoint
func NewFeedSource(name, url, accept string, getter Getter, parser Parser, log zerolog.Logger) *FeedSource {
	return &FeedSource{
		name:   name,
		url:    url,
		accept: accept,
		getter: getter,
		parser: parser,
		log:    log,
	}
}

// Name implements Source
func (s *FeedSource) Name() string {
	return s.name
}

// Fetch implements Source
func (s *FeedSource) Fetch(ctx context.Context) []trend.Trend {
	body, err := s.getter.Get(ctx, s.url, s.accept)
	if err != nil {
		s.log.Warn().Str("source", s.name).Err(err).Msg("source fetch failed")
		return nil
	}

	trends := s.parser.Parse(body)
	s.log.Debug().Str("source", s.name).Int("count", len(trends)).Msg("source fetched")
	return trends
}

// SearchTrendsSource queries the metered search-trends API. Without an API key
// it is a configured-off source and makes no request.
type SearchTrendsSource struct {
	endpoint string
	apiKey   string
	geo      string
	getter   Getter
	parser   Parser
	log      zerolog.Logger
}

// NewSearchTrendsSource creates the metered search-trends source
func NewSearchTrendsSource(endpoint, apiKey, geo string, getter Getter, log zerolog.Logger) *SearchTrendsSource {
	if geo == "" {
		geo = "US"
	}
	return &SearchTrendsSource{
		endpoint: endpoint,
		apiKey:   apiKey,
		geo:      geo,
		getter:   getter,
		parser:   SearchTrendsParser{Log: log},
		log:      log,
	}
}

// Name implements Source
func (s *SearchTrendsSource) Name() string {
	return "search-trends-api"
}

// Configured reports whether an API key is present
func (s *SearchTrendsSource) Configured() bool {
	return s.apiKey != ""
}

// Fetch implements Source
func (s *SearchTrendsSource) Fetch(ctx context.Context) []trend.Trend {
	if !s.Configured() {
		s.log.Info().Str("source", s.Name()).Msg("search trends API key not configured, skipping source")
		return nil
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		s.log.Warn().Str("source", s.Name()).Err(err).Msg("invalid search trends endpoint")
		return nil
	}
	q := u.Query()
	q.Set("engine", "google_trends_trending_now")
	q.Set("geo", s.geo)
	q.Set("api_key", s.apiKey)
	u.RawQuery = q.Encode()

	body, err := s.getter.Get(ctx, u.String(), AcceptJSON)
	if err != nil {
		// the URL carries the key, so only the error is logged
		s.log.Warn().Str("source", s.Name()).Err(redactKey(err, s.apiKey)).Msg("source fetch failed")
		return nil
	}

	trends := s.parser.Parse(body)
	s.log.Debug().Str("source", s.Name()).Int("count", len(trends)).Msg("source fetched")
	return trends
}

// SequentialTier tries alternative sources one after another and stops at the
// first that yields records
type SequentialTier struct {
	name    string
	sources []Source
	delay   time.Duration
	log     zerolog.Logger
}

// NewSequentialTier creates a tier pacing attempts by delay
func NewSequentialTier(name string, delay time.Duration, log zerolog.Logger, sources ...Source) *SequentialTier {
	return &SequentialTier{
		name:    name,
		sources: sources,
		delay:   delay,
		log:     log,
	}
}

// Name implements Source
func (t *SequentialTier) Name() string {
	return t.name
}

// Fetch implements Source
func (t *SequentialTier) Fetch(ctx context.Context) []trend.Trend {
	for i, src := range t.sources {
		if i > 0 && t.delay > 0 {
			timer := time.NewTimer(t.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				t.log.Warn().Str("tier", t.name).Err(ctx.Err()).Msg("tier abandoned")
				return nil
			case <-timer.C:
			}
		}

		if trends := src.Fetch(ctx); len(trends) > 0 {
			t.log.Debug().Str("tier", t.name).Str("source", src.Name()).Int("count", len(trends)).Msg("tier satisfied")
			return trends
		}
	}
	return nil
}

func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED"))
}
