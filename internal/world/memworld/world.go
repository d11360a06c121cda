// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package memworld is an in-process world used by the daemon's dry-run mode
// and by tests. It implements the engine's collaborator ports without any
// simulation beyond object bookkeeping.
package memworld

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
)

// ErrMapClosed is returned by operations on a closed map.
var ErrMapClosed = errors.New("map closed")

// DefaultBounds is used for maps without a registered layout.
var DefaultBounds = model.Area{X1: 0, Y1: 0, X2: 255, Y2: 255}

// World hands out one Map per instance and records safe-zone evictions.
type World struct {
	mu        sync.Mutex
	layouts   map[int]model.Area
	maps      []*Map
	evictions map[model.PlayerID]int
	nextID    atomic.Uint32
}

func New() *World {
	return &World{
		layouts:   make(map[int]model.Area),
		evictions: make(map[model.PlayerID]int),
	}
}

// SetBounds registers the walkable bounds of a map number.
func (w *World) SetBounds(mapNumber int, bounds model.Area) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layouts[mapNumber] = bounds
}

func (w *World) CreateMap(ctx context.Context, key model.EventKey) (ports.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	bounds, ok := w.layouts[key.MapNumber]
	if !ok {
		bounds = DefaultBounds
	}
	m := &Map{
		world:     w,
		key:       key,
		bounds:    bounds,
		objects:   make(map[model.ObjectID]model.Object),
		players:   make(map[model.PlayerID]model.ObjectID),
		listeners: make(map[int]ports.MapListener),
	}
	w.maps = append(w.maps, m)
	return m, nil
}

func (w *World) EnterMap(_ context.Context, player model.PlayerID, pm ports.Map, at model.Point) error {
	m, ok := pm.(*Map)
	if !ok {
		return fmt.Errorf("map %d does not belong to this world", pm.Number())
	}
	if _, on := m.PositionOf(player); on {
		return m.MovePlayer(context.Background(), player, at)
	}
	_, err := m.AddPlayer(player, at)
	return err
}

// EvictToSafeZone removes the player from every map it is on.
func (w *World) EvictToSafeZone(_ context.Context, player model.PlayerID) error {
	w.mu.Lock()
	w.evictions[player]++
	maps := append([]*Map(nil), w.maps...)
	w.mu.Unlock()

	for _, m := range maps {
		m.detachPlayer(player)
	}
	return nil
}

// Evictions reports how often a player was sent to the safe zone.
func (w *World) Evictions(player model.PlayerID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.evictions[player]
}

// Maps returns the maps not yet closed.
func (w *World) Maps() []*Map {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Map(nil), w.maps...)
}

func (w *World) forget(m *Map) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maps = slices.DeleteFunc(w.maps, func(c *Map) bool { return c == m })
}

func (w *World) newID() model.ObjectID {
	return model.ObjectID(w.nextID.Add(1))
}

var _ ports.World = (*World)(nil)
