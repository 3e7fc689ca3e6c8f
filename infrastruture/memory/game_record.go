// Package memory holds in-process stores used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/google/uuid"
)

// GameRecordRepo keeps finished games in memory.
type GameRecordRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*dmn.GameRecord
}

// NewGameRecordRepo returns an empty repo.
func NewGameRecordRepo() *GameRecordRepo {
	return &GameRecordRepo{records: make(map[uuid.UUID]*dmn.GameRecord)}
}

// Save inserts or replaces a record.
func (r *GameRecordRepo) Save(_ context.Context, record *dmn.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *record
	stored.Players = append([]uuid.UUID{}, record.Players...)
	r.records[record.ID] = &stored
	return nil
}

// Recent returns up to limit records, the most recently ended first.
func (r *GameRecordRepo) Recent(_ context.Context, limit int) ([]*dmn.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*dmn.GameRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	sort.Slice(records, func(a, b int) bool {
		return records[a].EndedAt.After(records[b].EndedAt)
	})

	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
