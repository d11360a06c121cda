// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package waves runs the timed spawn waves of the Playing phase.
package waves

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/eventd/internal/domain/event/lifecycle"
	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// Callbacks connect the scheduler to the instance. Spawn is required.
type Callbacks struct {
	Spawn    func(ctx context.Context, wave model.SpawnWave) error
	Announce func(ctx context.Context, wave model.SpawnWave)
	Changed  func(wave model.SpawnWave, active bool)
}

// Scheduler activates each configured wave independently. All waves share
// the context passed to Run, so cancelling it stops every wave at once.
type Scheduler struct {
	waves []model.SpawnWave
	cb    Callbacks

	mu     sync.RWMutex
	active map[int]model.SpawnWave
}

// New creates a scheduler for the given waves.
func New(waves []model.SpawnWave, cb Callbacks) *Scheduler {
	cp := make([]model.SpawnWave, len(waves))
	copy(cp, waves)
	return &Scheduler{waves: cp, cb: cb, active: make(map[int]model.SpawnWave)}
}

// Run starts every wave and blocks until all have expired or ctx is done.
// A spawn callback error stops the remaining waves and is returned.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.waves) == 0 {
		return nil
	}
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range s.waves {
		g.Go(func() error {
			return s.runWave(gctx, start, w)
		})
	}
	err := g.Wait()
	s.Clear()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// runWave keeps w active over [start+w.Start, start+w.End), however long
// the spawn takes.
func (s *Scheduler) runWave(ctx context.Context, start time.Time, w model.SpawnWave) error {
	if err := lifecycle.Wait(ctx, time.Until(start.Add(w.Start))); err != nil {
		return nil
	}
	s.setActive(w, true)
	defer s.setActive(w, false)

	if err := s.cb.Spawn(ctx, w); err != nil {
		return fmt.Errorf("wave %d spawn: %w", w.Number, err)
	}
	if w.Announcement != "" && s.cb.Announce != nil {
		s.cb.Announce(ctx, w)
	}
	_ = lifecycle.Wait(ctx, time.Until(start.Add(w.End)))
	return nil
}

func (s *Scheduler) setActive(w model.SpawnWave, active bool) {
	s.mu.Lock()
	_, was := s.active[w.Number]
	if active {
		s.active[w.Number] = w
	} else {
		delete(s.active, w.Number)
	}
	s.mu.Unlock()

	if was != active && s.cb.Changed != nil {
		s.cb.Changed(w, active)
	}
}

// Active returns the currently active wave numbers in ascending order.
func (s *Scheduler) Active() []int {
	s.mu.RLock()
	out := make([]int, 0, len(s.active))
	for n := range s.active {
		out = append(out, n)
	}
	s.mu.RUnlock()
	sort.Ints(out)
	return out
}

// IsActive reports whether wave n is live right now.
func (s *Scheduler) IsActive(n int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[n]
	return ok
}

// Clear deactivates every wave. Used when the instance enters wind-down.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	cleared := make([]model.SpawnWave, 0, len(s.active))
	for _, w := range s.active {
		cleared = append(cleared, w)
	}
	s.active = make(map[int]model.SpawnWave)
	s.mu.Unlock()

	if s.cb.Changed == nil {
		return
	}
	for _, w := range cleared {
		s.cb.Changed(w, false)
	}
}

// Span returns the offset at which the last wave expires.
func (s *Scheduler) Span() time.Duration {
	var end time.Duration
	for _, w := range s.waves {
		end = max(end, w.End)
	}
	return end
}
