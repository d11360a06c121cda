// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package membership holds the participant set of one event instance.
package membership

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// Member is the transient per-player state of one instance.
type Member struct {
	ID       model.PlayerID
	JoinedAt time.Time

	seq      uint64 // admission order, used as the ranking tie-break
	score    atomic.Int64
	rank     atomic.Int32
	defeated atomic.Bool
	evicted  atomic.Bool
}

// Score returns the accumulated score.
func (m *Member) Score() int64 { return m.score.Load() }

// AddScore adds delta and returns the new score. Lock-free.
func (m *Member) AddScore(delta int64) int64 { return m.score.Add(delta) }

// Rank returns the assigned rank, or 0 before ranking.
func (m *Member) Rank() int { return int(m.rank.Load()) }

// SetRank writes the rank exactly once; later calls return false.
func (m *Member) SetRank(rank int) bool {
	return m.rank.CompareAndSwap(0, int32(rank))
}

// Seq returns the admission order of the member.
func (m *Member) Seq() uint64 { return m.seq }

// Defeated reports whether the variant eliminated the player.
func (m *Member) Defeated() bool { return m.defeated.Load() }

// MarkDefeated flags the member as eliminated. It returns false if it already was.
func (m *Member) MarkDefeated() bool { return m.defeated.CompareAndSwap(false, true) }

// MarkEvicted records that the player was sent to the safe zone. Only the
// first call returns true.
func (m *Member) MarkEvicted() bool { return m.evicted.CompareAndSwap(false, true) }

// Evicted reports whether the player was already sent to the safe zone.
func (m *Member) Evicted() bool { return m.evicted.Load() }

// Set is the concurrency-safe membership set. Admission and removal are
// serialized by one lock; snapshots copy under the lock and iterate outside it.
type Set struct {
	mu       sync.Mutex
	capacity int
	closed   bool
	nextSeq  uint64
	members  map[model.PlayerID]*Member
	order    []*Member
	now      func() time.Time
}

// New creates an open set with the given capacity.
func New(capacity int) *Set {
	return &Set{
		capacity: capacity,
		members:  make(map[model.PlayerID]*Member, capacity),
		now:      time.Now,
	}
}

// TryEnter admits a player if the set is open and below capacity. A player
// that is already a member is accepted again without a second slot.
func (s *Set) TryEnter(player model.PlayerID) (model.EnterResult, *Member) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.EnterNotOpen, nil
	}
	if m, ok := s.members[player]; ok {
		return model.EnterSuccess, m
	}
	if len(s.members) >= s.capacity {
		return model.EnterFull, nil
	}
	s.nextSeq++
	m := &Member{ID: player, JoinedAt: s.now(), seq: s.nextSeq}
	s.members[player] = m
	s.order = append(s.order, m)
	return model.EnterSuccess, m
}

// CloseAdmission stops further admissions and returns the member count at
// the moment of closing.
func (s *Set) CloseAdmission() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return len(s.members)
}

// Closed reports whether admission has been closed.
func (s *Set) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Remove drops a player unconditionally. emptied is true when the removal
// left the set empty after admission had closed.
func (s *Set) Remove(player model.PlayerID) (removed *Member, emptied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[player]
	if !ok {
		return nil, false
	}
	delete(s.members, player)
	for i, o := range s.order {
		if o == m {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return m, s.closed && len(s.members) == 0
}

// Get returns the member record of a player.
func (s *Set) Get(player model.PlayerID) (*Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[player]
	return m, ok
}

// Len returns the current member count.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

// Capacity returns the configured capacity.
func (s *Set) Capacity() int { return s.capacity }

// Snapshot returns the members in admission order at this point in time.
func (s *Set) Snapshot() []*Member {
	s.mu.Lock()
	out := make([]*Member, len(s.order))
	copy(out, s.order)
	s.mu.Unlock()
	return out
}

// IDs returns the member identities in admission order.
func (s *Set) IDs() []model.PlayerID {
	snap := s.Snapshot()
	ids := make([]model.PlayerID, len(snap))
	for i, m := range snap {
		ids[i] = m.ID
	}
	return ids
}

// ForEachSnapshot applies fn to each member of a point-in-time copy, outside the lock.
func (s *Set) ForEachSnapshot(fn func(*Member)) {
	for _, m := range s.Snapshot() {
		fn(m)
	}
}

// Drain removes every member and returns them in admission order. Used on disposal.
func (s *Set) Drain() []*Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.order
	s.order = nil
	s.members = make(map[model.PlayerID]*Member)
	s.closed = true
	return out
}
