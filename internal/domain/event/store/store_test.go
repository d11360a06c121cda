// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
)

func openBackends(t *testing.T) map[string]ports.RankingStore {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	mr := miniredis.RunT(t)

	out := map[string]ports.RankingStore{}
	for _, opts := range []Options{
		{Backend: BackendMemory},
		{Backend: BackendSqlite, Path: filepath.Join(dir, "rankings.sqlite")},
		{Backend: BackendBadger, Path: filepath.Join(dir, "badger")},
		{Backend: BackendRedis, Redis: RedisConfig{Addr: mr.Addr()}},
	} {
		s, err := Open(ctx, opts)
		require.NoError(t, err, opts.Backend)
		t.Cleanup(func() { _ = s.Close() })
		out[opts.Backend] = s
	}
	return out
}

func run(gameID string, key model.EventKey, at time.Time, players ...model.PlayerID) []model.RankingRow {
	rows := make([]model.RankingRow, 0, len(players))
	for i, p := range players {
		rows = append(rows, model.RankingRow{
			GameID:          gameID,
			Event:           "devil_square",
			Variant:         string(model.VariantDefense),
			MapNumber:       key.MapNumber,
			Level:           key.Level,
			Owner:           key.Owner,
			Player:          p,
			Rank:            i + 1,
			Score:           int64(100 - i*10),
			BonusExperience: 50,
			BonusMoney:      5,
			Won:             i == 0,
			FinishedAt:      at,
		})
	}
	return rows
}

func TestRankingStores_Contract(t *testing.T) {
	ctx := context.Background()
	shared := model.EventKey{MapNumber: 9, Level: 3}
	private := model.EventKey{MapNumber: 9, Level: 3, Owner: "leader/1"}
	// millisecond precision survives every backend
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := run("g-1", shared, t0, "a", "b", "c")
	second := run("g-2", shared, t0.Add(time.Minute), "b", "a")
	other := run("g-3", private, t0.Add(2*time.Minute), "z")

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveRankings(ctx, first))
			require.NoError(t, s.SaveRankings(ctx, second))
			require.NoError(t, s.SaveRankings(ctx, other))
			require.NoError(t, s.SaveRankings(ctx, nil))

			got, err := s.ListByGame(ctx, "g-1")
			require.NoError(t, err)
			if diff := cmp.Diff(first, got); diff != "" {
				t.Fatalf("ListByGame mismatch (-want +got):\n%s", diff)
			}

			got, err = s.ListByKey(ctx, shared, 0)
			require.NoError(t, err)
			want := append(append([]model.RankingRow{}, second...), first...)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("ListByKey mismatch (-want +got):\n%s", diff)
			}

			got, err = s.ListByKey(ctx, shared, 3)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "g-2", got[0].GameID)
			assert.Equal(t, "g-1", got[2].GameID)

			got, err = s.ListByKey(ctx, private, 10)
			require.NoError(t, err)
			if diff := cmp.Diff(other, got); diff != "" {
				t.Fatalf("private key mismatch (-want +got):\n%s", diff)
			}

			got, err = s.ListByGame(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "bolt"})
	require.Error(t, err)
}

func TestOpen_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), Options{Backend: BackendRedis, Redis: RedisConfig{Addr: addr}})
	require.Error(t, err)
}

func TestSqliteStore_ReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "r.sqlite")

	s, err := NewSqliteStore(ctx, path)
	require.NoError(t, err)
	rows := run("g-9", model.EventKey{MapNumber: 1}, time.UnixMilli(1_700_000_000_000).UTC(), "p")
	require.NoError(t, s.SaveRankings(ctx, rows))
	require.NoError(t, s.Close())

	s, err = NewSqliteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.ListByGame(ctx, "g-9")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(rows, got))
}

func TestBadgerStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBadgerStore("")
	require.NoError(t, err)
	defer s.Close()

	key := model.EventKey{MapNumber: 2, Level: 1}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, s.SaveRankings(ctx, run(fmt.Sprintf("g-%d", i), key, base.Add(time.Duration(i)*time.Second), "p")))
	}
	got, err := s.ListByKey(ctx, key, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "g-4", got[0].GameID)
	assert.Equal(t, "g-3", got[1].GameID)
}
