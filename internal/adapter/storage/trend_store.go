// internal/adapter/storage/trend_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendwise/internal/domain/trend"
)

// ErrNotFound is returned when a snapshot does not exist
var ErrNotFound = errors.New("snapshot not found")

// MaxHistory caps how many snapshots a single history read returns
const MaxHistory = 100

const schema = `
	CREATE TABLE IF NOT EXISTS trend_snapshots (
		id          uuid PRIMARY KEY,
		taken_at    timestamptz NOT NULL,
		trend_count integer NOT NULL,
		trends      jsonb NOT NULL
	);
	CREATE INDEX IF NOT EXISTS trend_snapshots_taken_at_idx ON trend_snapshots (taken_at DESC);
`

// TrendStore persists aggregation snapshots
type TrendStore struct {
	db *pgxpool.Pool
}

// NewTrendStore creates a new trend store
func NewTrendStore(db *pgxpool.Pool) *TrendStore {
	return &TrendStore{
		db: db,
	}
}

// EnsureSchema creates the snapshot table when missing
func (s *TrendStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// SaveSnapshot stores a snapshot, assigning an ID and timestamp when missing.
// It returns the snapshot as stored.
func (s *TrendStore) SaveSnapshot(ctx context.Context, snap trend.Snapshot) (trend.Snapshot, error) {
	snap = prepareSnapshot(snap, time.Now)

	trendsJSON, err := encodeTrends(snap.Trends)
	if err != nil {
		return trend.Snapshot{}, err
	}

	query := `
		INSERT INTO trend_snapshots (id, taken_at, trend_count, trends)
		VALUES ($1::uuid, $2, $3, $4)
	`

	_, err = s.db.Exec(ctx, query, snap.ID, snap.TakenAt, len(snap.Trends), trendsJSON)
	if err != nil {
		return trend.Snapshot{}, fmt.Errorf("error executing query: %w", err)
	}

	return snap, nil
}

// GetSnapshot retrieves a snapshot by ID
func (s *TrendStore) GetSnapshot(ctx context.Context, id string) (*trend.Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `
		SELECT id::text, taken_at, trends
		FROM trend_snapshots
		WHERE id = $1::uuid
	`

	var snap trend.Snapshot
	var trendsJSON []byte

	err := s.db.QueryRow(ctx, query, id).Scan(&snap.ID, &snap.TakenAt, &trendsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying snapshot: %w", err)
	}

	if snap.Trends, err = decodeTrends(trendsJSON); err != nil {
		return nil, err
	}

	return &snap, nil
}

// RecentSnapshots returns up to limit snapshots, newest first
func (s *TrendStore) RecentSnapshots(ctx context.Context, limit int) ([]trend.Snapshot, error) {
	limit = clampHistory(limit)

	query := `
		SELECT id::text, taken_at, trends
		FROM trend_snapshots
		ORDER BY taken_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	snapshots := make([]trend.Snapshot, 0, limit)
	for rows.Next() {
		var snap trend.Snapshot
		var trendsJSON []byte

		if err := rows.Scan(&snap.ID, &snap.TakenAt, &trendsJSON); err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}

		if snap.Trends, err = decodeTrends(trendsJSON); err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

func prepareSnapshot(snap trend.Snapshot, now func() time.Time) trend.Snapshot {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = now().UTC()
	}
	if snap.Trends == nil {
		snap.Trends = []trend.Trend{}
	}
	return snap
}

func clampHistory(limit int) int {
	if limit <= 0 || limit > MaxHistory {
		return MaxHistory
	}
	return limit
}

func encodeTrends(trends []trend.Trend) ([]byte, error) {
	data, err := json.Marshal(trends)
	if err != nil {
		return nil, fmt.Errorf("error marshaling trends: %w", err)
	}
	return data, nil
}

func decodeTrends(data []byte) ([]trend.Trend, error) {
	var trends []trend.Trend
	if err := json.Unmarshal(data, &trends); err != nil {
		return nil, fmt.Errorf("error unmarshaling trends: %w", err)
	}
	return trends, nil
}
