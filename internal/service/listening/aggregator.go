// internal/service/listening/aggregator.go

package listening

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"trendwise/internal/domain/trend"
)

// AggregatorConfig holds the list-shaping thresholds of the aggregator
type AggregatorConfig struct {
	// SupplementBelow is the live record count under which fallback records are added
	SupplementBelow int
	// SupplementTarget is the total the supplement tops the list up to
	SupplementTarget int
	// MaxResults caps the returned list
	MaxResults int
	// Dedup decides which records are near-duplicates
	Dedup trend.DedupRule
}

// DefaultAggregatorConfig returns the production thresholds
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		SupplementBelow:  8,
		SupplementTarget: 12,
		MaxResults:       15,
		Dedup:            trend.DefaultDedupRule,
	}
}

// Aggregator merges the search-trends and social paths into one ranked list
type Aggregator struct {
	search   Source
	social   Source
	fallback *Synthesizer
	config   AggregatorConfig
	log      zerolog.Logger
}

// NewAggregator creates an aggregator over the two live paths. A nil
// fallback uses a wall-clock Synthesizer.
func NewAggregator(search, social Source, fallback *Synthesizer, config AggregatorConfig, log zerolog.Logger) *Aggregator {
	if fallback == nil {
		fallback = NewSynthesizer(nil)
	}

	return &Aggregator{
		search:   search,
		social:   social,
		fallback: fallback,
		config:   config,
		log:      log.With().Str("component", "aggregator").Logger(),
	}
}

type pathResult struct {
	name   string
	trends []trend.Trend
}

// GetAllTrendingTopics implements trend.Aggregator. It always returns a
// non-empty list: an internal failure degrades to the synthesized list.
func (a *Aggregator) GetAllTrendingTopics(ctx context.Context) (result []trend.Trend) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Msg("aggregation failed, serving synthesized trends")
			result = a.fallback.Synthesize()
		}
	}()

	results := a.fetchAll(ctx)

	var live []trend.Trend
	for _, res := range results {
		if res.name == "" {
			continue
		}
		if len(res.trends) == 0 {
			a.log.Warn().Str("path", res.name).Msg("path returned no trends")
			continue
		}
		a.log.Info().Str("path", res.name).Int("count", len(res.trends)).Msg("path returned trends")
		live = append(live, res.trends...)
	}

	merged := a.supplement(live)
	merged = a.config.Dedup.Deduplicate(merged)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > a.config.MaxResults {
		merged = merged[:a.config.MaxResults]
	}
	return merged
}

// fetchAll runs both paths concurrently and waits for both, whatever happens
// to either of them
func (a *Aggregator) fetchAll(ctx context.Context) []pathResult {
	paths := []Source{a.search, a.social}
	results := make([]pathResult, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		if p == nil {
			continue
		}
		results[i].name = p.Name()

		wg.Add(1)
		go func(i int, p Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.log.Error().Str("path", p.Name()).Err(fmt.Errorf("%v", r)).Msg("path panicked")
					results[i].trends = nil
				}
			}()
			results[i].trends = p.Fetch(ctx)
		}(i, p)
	}
	wg.Wait()

	return results
}

// supplement tops up a short live list with synthesized records, or replaces
// an empty one entirely
func (a *Aggregator) supplement(live []trend.Trend) []trend.Trend {
	if len(live) == 0 {
		a.log.Warn().Msg("all live sources empty, serving synthesized trends")
		return a.fallback.Synthesize()
	}
	if len(live) >= a.config.SupplementBelow {
		return live
	}

	merged := live
	for _, t := range a.fallback.Synthesize() {
		if len(merged) >= a.config.SupplementTarget {
			break
		}
		merged = append(merged, t)
	}
	a.log.Info().Int("live", len(live)).Int("total", len(merged)).Msg("supplemented with synthesized trends")
	return merged
}
