// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists ranking rows.
package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
)

const defaultListLimit = 100

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSqlite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Options selects and configures a ranking store backend.
type Options struct {
	Backend string
	Path    string // sqlite file or badger directory
	Redis   RedisConfig
}

// Open creates a RankingStore based on the backend configuration.
func Open(ctx context.Context, opts Options) (ports.RankingStore, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendSqlite
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSqlite:
		return NewSqliteStore(ctx, opts.Path)
	case BackendBadger:
		return OpenBadgerStore(opts.Path)
	case BackendRedis:
		return NewRedisStore(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// newestFirst orders rows by run recency, then game id, then rank.
func newestFirst(rows []model.RankingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.FinishedAt.Equal(b.FinishedAt) {
			return a.FinishedAt.After(b.FinishedAt)
		}
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		return a.Rank < b.Rank
	})
}

func byRank(rows []model.RankingRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func sameKey(r model.RankingRow, key model.EventKey) bool {
	return r.Key() == key
}
