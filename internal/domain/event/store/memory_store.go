package store

import (
	"context"
	"sync"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// MemoryStore keeps ranking rows in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []model.RankingRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveRankings(_ context.Context, rows []model.RankingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *MemoryStore) ListByGame(_ context.Context, gameID string) ([]model.RankingRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.RankingRow
	for _, r := range s.rows {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	byRank(out)
	return out, nil
}

func (s *MemoryStore) ListByKey(_ context.Context, key model.EventKey, limit int) ([]model.RankingRow, error) {
	s.mu.RLock()
	var out []model.RankingRow
	for _, r := range s.rows {
		if sameKey(r, key) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	newestFirst(out)
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
