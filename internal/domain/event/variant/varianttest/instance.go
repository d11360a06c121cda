// Package varianttest provides a timer-less ports.Instance for variant tests.
package varianttest

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/membership"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/world/memworld"
)

// Instance is a Playing-phase instance without timers. Players are admitted
// and placed on a memworld map in the order given.
type Instance struct {
	World     *memworld.World
	MapObj    *memworld.Map
	Set       *membership.Set
	Messenger *memworld.Messenger

	key     model.EventKey
	started time.Time

	mu    sync.Mutex
	ended []model.ReasonCode
}

// New builds an instance on a 0..100 square map.
func New(t *testing.T, key model.EventKey, players ...model.PlayerID) *Instance {
	t.Helper()
	w := memworld.New()
	w.SetBounds(key.MapNumber, model.Area{X1: 0, Y1: 0, X2: 100, Y2: 100})
	pm, err := w.CreateMap(context.Background(), key)
	if err != nil {
		t.Fatalf("create map: %v", err)
	}
	inst := &Instance{
		World:     w,
		MapObj:    pm.(*memworld.Map),
		Set:       membership.New(len(players) + 1),
		Messenger: memworld.NewMessenger(false),
		key:       key,
		started:   time.Now(),
	}
	for i, p := range players {
		inst.Set.TryEnter(p)
		if _, err := inst.MapObj.AddPlayer(p, model.Point{X: 10 + i, Y: 10}); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	inst.Set.CloseAdmission()
	return inst
}

func (i *Instance) ID() string             { return "test-instance" }
func (i *Instance) Key() model.EventKey    { return i.key }
func (i *Instance) Phase() model.Phase     { return model.PhasePlaying }
func (i *Instance) Map() ports.Map         { return i.MapObj }
func (i *Instance) Elapsed() time.Duration { return time.Since(i.started) }

func (i *Instance) Members() []model.PlayerID { return i.Set.IDs() }

func (i *Instance) IsMember(p model.PlayerID) bool {
	_, ok := i.Set.Get(p)
	return ok
}

func (i *Instance) Alive() []model.PlayerID {
	var out []model.PlayerID
	i.Set.ForEachSnapshot(func(m *membership.Member) {
		if !m.Defeated() {
			out = append(out, m.ID)
		}
	})
	return out
}

func (i *Instance) AddScore(p model.PlayerID, delta int64) int64 {
	m, ok := i.Set.Get(p)
	if !ok {
		return 0
	}
	return m.AddScore(delta)
}

func (i *Instance) Score(p model.PlayerID) int64 {
	m, ok := i.Set.Get(p)
	if !ok {
		return 0
	}
	return m.Score()
}

func (i *Instance) Defeat(ctx context.Context, p model.PlayerID, reason string) {
	m, ok := i.Set.Get(p)
	if !ok || !m.MarkDefeated() {
		return
	}
	i.Send(ctx, p, ports.Message{Kind: ports.MsgEliminated, Text: reason})
	if m.MarkEvicted() {
		_ = i.World.EvictToSafeZone(ctx, p)
	}
}

func (i *Instance) Send(ctx context.Context, p model.PlayerID, msg ports.Message) {
	_ = i.Messenger.Send(ctx, p, msg)
}

func (i *Instance) Broadcast(ctx context.Context, msg ports.Message) {
	i.Set.ForEachSnapshot(func(m *membership.Member) { i.Send(ctx, m.ID, msg) })
}

func (i *Instance) EndGame(reason model.ReasonCode) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ended = append(i.ended, reason)
}

// Leave removes a player as a disconnect would, returning its last position.
func (i *Instance) Leave(p model.PlayerID) model.Point {
	pos, _ := i.MapObj.PositionOf(p)
	i.MapObj.RemovePlayer(p)
	i.Set.Remove(p)
	return pos
}

// Ended returns the EndGame reasons requested so far.
func (i *Instance) Ended() []model.ReasonCode {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.ended)
}

// Defeated reports whether a player was eliminated.
func (i *Instance) Defeated(p model.PlayerID) bool {
	m, ok := i.Set.Get(p)
	return ok && m.Defeated()
}

var _ ports.Instance = (*Instance)(nil)
