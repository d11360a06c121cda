// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package waves

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_ActivatesAndExpiresWaves(t *testing.T) {
	var spawned sync.Map
	var announced atomic.Int32
	s := New([]model.SpawnWave{
		{Number: 1, Start: 0, End: 60 * time.Millisecond},
		{Number: 2, Start: 30 * time.Millisecond, End: 90 * time.Millisecond, Announcement: "wave two"},
	}, Callbacks{
		Spawn: func(_ context.Context, w model.SpawnWave) error {
			spawned.Store(w.Number, true)
			return nil
		},
		Announce: func(context.Context, model.SpawnWave) { announced.Add(1) },
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	require.Eventually(t, func() bool { return s.IsActive(1) }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		a := s.Active()
		return len(a) == 2 && a[0] == 1 && a[1] == 2
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		a := s.Active()
		return len(a) == 1 && a[0] == 2
	}, time.Second, time.Millisecond)

	require.NoError(t, <-done)
	assert.Empty(t, s.Active())
	_, ok1 := spawned.Load(1)
	_, ok2 := spawned.Load(2)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, int32(1), announced.Load())
	assert.Equal(t, 90*time.Millisecond, s.Span())
}

func TestScheduler_CancellationUnblocksAllWaves(t *testing.T) {
	const n = 25
	var waves []model.SpawnWave
	for i := 1; i <= n; i++ {
		// half pending their start offset, half active and waiting for their end
		start := time.Duration(0)
		if i%2 == 0 {
			start = time.Hour
		}
		waves = append(waves, model.SpawnWave{Number: i, Start: start, End: 2 * time.Hour})
	}
	s := New(waves, Callbacks{Spawn: func(context.Context, model.SpawnWave) error { return nil }})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return len(s.Active()) == (n+1)/2 }, time.Second, time.Millisecond)

	start := time.Now()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waves did not unblock after cancellation")
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, s.Active())
}

func TestScheduler_SpawnErrorStopsSiblings(t *testing.T) {
	boom := errors.New("spawn failed")
	s := New([]model.SpawnWave{
		{Number: 1, Start: 0, End: time.Hour},
		{Number: 2, Start: 10 * time.Millisecond, End: time.Hour},
	}, Callbacks{Spawn: func(_ context.Context, w model.SpawnWave) error {
		if w.Number == 2 {
			return boom
		}
		return nil
	}})

	err := s.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s.Active())
}

func TestScheduler_ChangedNotifications(t *testing.T) {
	var mu sync.Mutex
	var events []bool
	s := New([]model.SpawnWave{{Number: 7, Start: 0, End: 20 * time.Millisecond}}, Callbacks{
		Spawn: func(context.Context, model.SpawnWave) error { return nil },
		Changed: func(w model.SpawnWave, active bool) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 7, w.Number)
			events = append(events, active)
		},
	})
	require.NoError(t, s.Run(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, events)
}

func TestScheduler_NoWaves(t *testing.T) {
	s := New(nil, Callbacks{})
	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, s.Active())
}

func TestScheduler_SlowSpawnDoesNotStretchWindow(t *testing.T) {
	s := New([]model.SpawnWave{{Number: 1, Start: 0, End: 100 * time.Millisecond}}, Callbacks{
		Spawn: func(context.Context, model.SpawnWave) error {
			time.Sleep(80 * time.Millisecond)
			return nil
		},
	})

	began := time.Now()
	require.NoError(t, s.Run(context.Background()))
	elapsed := time.Since(began)

	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 170*time.Millisecond, "window ran past its end by the spawn time")
	assert.Empty(t, s.Active())
}
