// internal/domain/trend/detector.go

package trend

import (
	"context"
)

// Aggregator produces the current ranked list of trending topics.
// It never fails; when every live source is unavailable the list is synthesized.
type Aggregator interface {
	GetAllTrendingTopics(ctx context.Context) []Trend
}

// Service is the trend surface consumed by the HTTP layer
type Service interface {
	// Trends returns the current list, served from cache when fresh
	Trends(ctx context.Context) ([]Trend, error)

	// Refresh aggregates a fresh list, bypassing the cache
	Refresh(ctx context.Context) ([]Trend, error)

	// History returns the most recent persisted snapshots
	History(ctx context.Context, limit int) ([]Snapshot, error)
}
