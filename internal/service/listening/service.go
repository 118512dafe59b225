// internal/service/listening/service.go

package listening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"trendwise/internal/domain/trend"
)

// ErrHistoryDisabled is returned by History when no snapshot store is configured
var ErrHistoryDisabled = errors.New("trend history is disabled")

// DefaultRefreshSchedule re-aggregates in the background every ten minutes
const DefaultRefreshSchedule = "@every 10m"

// TrendCache holds the most recent aggregated list
type TrendCache interface {
	Get(ctx context.Context) ([]trend.Trend, bool)
	Set(ctx context.Context, trends []trend.Trend)
}

// SnapshotStore persists aggregation results
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap trend.Snapshot) (trend.Snapshot, error)
	RecentSnapshots(ctx context.Context, limit int) ([]trend.Snapshot, error)
}

// Publisher sends an event on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// RefreshedEvent is published after every fresh aggregation
type RefreshedEvent struct {
	SnapshotID  string               `json:"snapshot_id"`
	Count       int                  `json:"count"`
	Sources     map[trend.Source]int `json:"sources"`
	RefreshedAt time.Time            `json:"refreshed_at"`
}

// RefreshedSubject returns the subject refresh events are published on
func RefreshedSubject(topic string) string {
	return topic + ".refreshed"
}

// TrendServiceConfig contains configuration for the trend service
type TrendServiceConfig struct {
	RefreshSchedule string
	EventsTopic     string
	RefreshTimeout  time.Duration
}

// TrendService implements the trend.Service interface
type TrendService struct {
	aggregator trend.Aggregator
	cache      TrendCache
	store      SnapshotStore
	publisher  Publisher
	config     TrendServiceConfig
	log        zerolog.Logger
	now        func() time.Time

	refreshMu sync.Mutex
	cron      *cron.Cron
	wg        sync.WaitGroup
}

// TrendServiceOption customizes a TrendService
type TrendServiceOption func(*TrendService)

// WithSnapshotStore enables snapshot persistence and history
func WithSnapshotStore(store SnapshotStore) TrendServiceOption {
	return func(s *TrendService) { s.store = store }
}

// WithPublisher enables refresh events
func WithPublisher(p Publisher) TrendServiceOption {
	return func(s *TrendService) { s.publisher = p }
}

// WithClock replaces the clock used to stamp snapshots and events
func WithClock(now func() time.Time) TrendServiceOption {
	return func(s *TrendService) { s.now = now }
}

// NewTrendService creates a new trend service
func NewTrendService(aggregator trend.Aggregator, cache TrendCache, config TrendServiceConfig, log zerolog.Logger, opts ...TrendServiceOption) *TrendService {
	if config.RefreshSchedule == "" {
		config.RefreshSchedule = DefaultRefreshSchedule
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "trends"
	}
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = time.Minute
	}

	s := &TrendService{
		aggregator: aggregator,
		cache:      cache,
		config:     config,
		log:        log.With().Str("component", "trend_service").Logger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trends returns the cached list, aggregating a fresh one on a miss
func (s *TrendService) Trends(ctx context.Context) ([]trend.Trend, error) {
	if trends, ok := s.cache.Get(ctx); ok {
		return trends, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	if trends, ok := s.cache.Get(ctx); ok {
		return trends, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh aggregates a fresh list regardless of the cache
func (s *TrendService) Refresh(ctx context.Context) ([]trend.Trend, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *TrendService) refreshLocked(ctx context.Context) ([]trend.Trend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the result is shared through the cache, so a caller going away must not
	// cut the aggregation short
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RefreshTimeout)
	defer cancel()

	trends := s.aggregator.GetAllTrendingTopics(ctx)
	s.cache.Set(ctx, trends)

	snap := trend.Snapshot{
		ID:      uuid.New().String(),
		TakenAt: s.now().UTC(),
		Trends:  trends,
	}

	if s.store != nil {
		saved, err := s.store.SaveSnapshot(ctx, snap)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to persist snapshot")
		} else {
			snap = saved
		}
	}

	s.publish(snap)

	s.log.Info().Int("count", len(trends)).Str("snapshot_id", snap.ID).Msg("trends refreshed")
	return trends, nil
}

func (s *TrendService) publish(snap trend.Snapshot) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(RefreshedEvent{
		SnapshotID:  snap.ID,
		Count:       len(snap.Trends),
		Sources:     snap.CountBySource(),
		RefreshedAt: snap.TakenAt,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode refresh event")
		return
	}

	if err := s.publisher.Publish(RefreshedSubject(s.config.EventsTopic), data); err != nil {
		s.log.Error().Err(err).Msg("failed to publish refresh event")
	}
}

// History returns up to limit recent snapshots, newest first
func (s *TrendService) History(ctx context.Context, limit int) ([]trend.Snapshot, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}

	snapshots, err := s.store.RecentSnapshots(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return snapshots, nil
}

// Start schedules background refreshes and warms the cache
func (s *TrendService) Start(ctx context.Context) error {
	logger := cronLogger{log: s.log}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if _, err := c.AddFunc(s.config.RefreshSchedule, s.scheduledRefresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.config.RefreshSchedule, err)
	}

	s.cron = c
	c.Start()
	s.log.Info().Str("schedule", s.config.RefreshSchedule).Msg("trend refresh scheduled")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		warmCtx, cancel := context.WithTimeout(ctx, s.config.RefreshTimeout)
		defer cancel()
		if _, err := s.Trends(warmCtx); err != nil {
			s.log.Warn().Err(err).Msg("cache warm-up failed")
		}
	}()

	return nil
}

func (s *TrendService) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RefreshTimeout)
	defer cancel()
	if _, err := s.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("scheduled refresh failed")
	}
}

// Stop halts the scheduler and waits for running refreshes to finish
func (s *TrendService) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes scheduler messages through zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
