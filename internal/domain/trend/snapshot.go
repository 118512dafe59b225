// internal/domain/trend/snapshot.go

package trend

import "time"

// Snapshot is one persisted aggregation result
type Snapshot struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Trends  []Trend   `json:"trends"`
}

// CountBySource tallies the records of each provenance
func (s Snapshot) CountBySource() map[Source]int {
	counts := make(map[Source]int)
	for _, t := range s.Trends {
		counts[t.Source]++
	}
	return counts
}
