package memworld

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
)

// Map is an object registry with walkability masks. Listener callbacks run
// outside the map lock.
type Map struct {
	world  *World
	key    model.EventKey
	bounds model.Area

	mu        sync.Mutex
	objects   map[model.ObjectID]model.Object
	players   map[model.PlayerID]model.ObjectID
	blocked   []model.Area
	listeners map[int]ports.MapListener
	nextSub   int
	spawned   int
	closed    bool
}

func (m *Map) Number() int        { return m.key.MapNumber }
func (m *Map) Bounds() model.Area { return m.bounds }

// Key is the event key the map was created for.
func (m *Map) Key() model.EventKey { return m.key }

func (m *Map) Subscribe(l ports.MapListener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = l
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Listeners reports the number of live subscriptions.
func (m *Map) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

func (m *Map) snapshotListeners() []ports.MapListener {
	out := make([]ports.MapListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		out = append(out, l)
	}
	return out
}

func (m *Map) add(obj model.Object) (model.Object, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return model.Object{}, ErrMapClosed
	}
	obj.ID = m.world.newID()
	obj.Position = m.bounds.Clamp(obj.Position)
	m.objects[obj.ID] = obj
	if obj.Kind == model.ObjectPlayer {
		m.players[obj.Player] = obj.ID
	}
	ls := m.snapshotListeners()
	m.mu.Unlock()

	for _, l := range ls {
		l.ObjectAdded(obj)
	}
	return obj, nil
}

func (m *Map) remove(id model.ObjectID) (model.Object, bool) {
	m.mu.Lock()
	obj, ok := m.objects[id]
	if !ok || m.closed {
		m.mu.Unlock()
		return model.Object{}, false
	}
	delete(m.objects, id)
	if obj.Kind == model.ObjectPlayer {
		delete(m.players, obj.Player)
	}
	ls := m.snapshotListeners()
	m.mu.Unlock()

	for _, l := range ls {
		l.ObjectRemoved(obj)
	}
	return obj, true
}

// AddPlayer places a player on the map, as the world does when a member
// is warped in.
func (m *Map) AddPlayer(player model.PlayerID, at model.Point) (model.Object, error) {
	return m.add(model.Object{Kind: model.ObjectPlayer, Type: "player", Player: player, Position: at})
}

// RemovePlayer takes a player off the map, as a disconnect would.
func (m *Map) RemovePlayer(player model.PlayerID) bool {
	m.mu.Lock()
	id, ok := m.players[player]
	m.mu.Unlock()
	if !ok {
		return false
	}
	_, removed := m.remove(id)
	return removed
}

func (m *Map) detachPlayer(player model.PlayerID) {
	m.mu.Lock()
	id, ok := m.players[player]
	if ok {
		delete(m.objects, id)
		delete(m.players, player)
	}
	m.mu.Unlock()
}

func (m *Map) SpawnNPC(ctx context.Context, kind model.ObjectKind, npcType string, area model.Area) (model.Object, error) {
	if err := ctx.Err(); err != nil {
		return model.Object{}, err
	}
	if area.Empty() {
		area = m.bounds
	}
	m.mu.Lock()
	n := m.spawned
	m.spawned++
	m.mu.Unlock()
	return m.add(model.Object{Kind: kind, Type: npcType, Position: spreadIn(area, n)})
}

// spreadIn walks the tiles of area row by row so successive spawns land on
// distinct, predictable tiles.
func spreadIn(area model.Area, n int) model.Point {
	w := area.X2 - area.X1 + 1
	h := area.Y2 - area.Y1 + 1
	n %= w * h
	return model.Point{X: area.X1 + n%w, Y: area.Y1 + n/w}
}

func (m *Map) RemoveObject(_ context.Context, id model.ObjectID) error {
	if _, ok := m.remove(id); !ok {
		return fmt.Errorf("object %d not on map", id)
	}
	return nil
}

// Object returns one object by id.
func (m *Map) Object(id model.ObjectID) (model.Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[id]
	return obj, ok
}

// Objects returns all objects of a kind ordered by id.
func (m *Map) Objects(kind model.ObjectKind) []model.Object {
	m.mu.Lock()
	var out []model.Object
	for _, o := range m.objects {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Map) ObjectsInRange(center model.Point, radius int) []model.Object {
	m.mu.Lock()
	var out []model.Object
	for _, o := range m.objects {
		if o.Position.Distance(center) <= radius {
			out = append(out, o)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Map) PositionOf(player model.PlayerID) (model.Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.players[player]
	if !ok {
		return model.Point{}, false
	}
	return m.objects[id].Position, true
}

func (m *Map) MovePlayer(_ context.Context, player model.PlayerID, to model.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.players[player]
	if !ok {
		return fmt.Errorf("player %s not on map", player)
	}
	obj := m.objects[id]
	obj.Position = m.bounds.Clamp(to)
	m.objects[id] = obj
	return nil
}

func (m *Map) IsWalkable(p model.Point) bool {
	if !m.bounds.Contains(p) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.blocked {
		if a.Contains(p) {
			return false
		}
	}
	return true
}

func (m *Map) SetWalkable(area model.Area, walkable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if walkable {
		m.blocked = slices.DeleteFunc(m.blocked, func(a model.Area) bool { return a == area })
		return
	}
	if !slices.Contains(m.blocked, area) {
		m.blocked = append(m.blocked, area)
	}
}

func (m *Map) DropItem(ctx context.Context, at model.Point, itemGroup string) (model.Object, error) {
	if err := ctx.Err(); err != nil {
		return model.Object{}, err
	}
	return m.add(model.Object{Kind: model.ObjectItem, Type: itemGroup, Position: at})
}

// PickUp removes an item as a player collecting it would.
func (m *Map) PickUp(id model.ObjectID) (model.Object, bool) {
	return m.remove(id)
}

func (m *Map) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.objects = make(map[model.ObjectID]model.Object)
	m.players = make(map[model.PlayerID]model.ObjectID)
	m.mu.Unlock()

	if m.world != nil {
		m.world.forget(m)
	}
	return nil
}

// Closed reports whether Close was called.
func (m *Map) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.Map = (*Map)(nil)
