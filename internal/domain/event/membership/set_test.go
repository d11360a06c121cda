// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package membership

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryEnter_ConcurrentNeverExceedsCapacity(t *testing.T) {
	const capacity = 10
	s := New(capacity)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			player := model.PlayerID(fmt.Sprintf("p-%d", i))
			res, m := s.TryEnter(player)
			if res == model.EnterSuccess {
				accepted.Add(1)
				// acceptance is visible before TryEnter returns
				_, ok := s.Get(player)
				assert.True(t, ok)
				assert.NotNil(t, m)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(capacity), accepted.Load())
	assert.Equal(t, capacity, s.Len())
}

func TestTryEnter_FullLobbyRejection(t *testing.T) {
	s := New(10)
	for i := 0; i < 10; i++ {
		res, _ := s.TryEnter(model.PlayerID(fmt.Sprintf("p-%d", i)))
		require.Equal(t, model.EnterSuccess, res)
	}

	res, m := s.TryEnter("eleventh")
	assert.Equal(t, model.EnterFull, res)
	assert.Nil(t, m)
	assert.Equal(t, 10, s.Len())
}

func TestTryEnter_NotOpenAfterClose(t *testing.T) {
	s := New(5)
	_, _ = s.TryEnter("a")
	assert.Equal(t, 1, s.CloseAdmission())

	res, _ := s.TryEnter("b")
	assert.Equal(t, model.EnterNotOpen, res)
	assert.True(t, s.Closed())
}

func TestTryEnter_RejoinIsIdempotent(t *testing.T) {
	s := New(2)
	_, first := s.TryEnter("a")
	res, second := s.TryEnter("a")
	assert.Equal(t, model.EnterSuccess, res)
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.Len())
}

func TestRemove_SignalsEmptyOnlyAfterClose(t *testing.T) {
	s := New(5)
	_, _ = s.TryEnter("a")
	_, emptied := s.Remove("a")
	assert.False(t, emptied, "empty during Open must not terminate")

	_, _ = s.TryEnter("b")
	_, _ = s.TryEnter("c")
	s.CloseAdmission()
	_, emptied = s.Remove("b")
	assert.False(t, emptied)
	m, emptied := s.Remove("c")
	assert.True(t, emptied)
	assert.Equal(t, model.PlayerID("c"), m.ID)

	m, emptied = s.Remove("missing")
	assert.Nil(t, m)
	assert.False(t, emptied)
}

func TestSnapshot_IsolatedFromLaterMutation(t *testing.T) {
	s := New(5)
	_, _ = s.TryEnter("a")
	_, _ = s.TryEnter("b")

	snap := s.Snapshot()
	_, _ = s.TryEnter("c")
	_, _ = s.Remove("a")

	require.Len(t, snap, 2)
	assert.Equal(t, model.PlayerID("a"), snap[0].ID)
	assert.Equal(t, []model.PlayerID{"b", "c"}, s.IDs())
}

func TestMember_ScoreAndRank(t *testing.T) {
	s := New(1)
	_, m := s.TryEnter("a")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddScore(3)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(300), m.Score())

	assert.True(t, m.SetRank(2))
	assert.False(t, m.SetRank(1))
	assert.Equal(t, 2, m.Rank())

	assert.True(t, m.MarkDefeated())
	assert.False(t, m.MarkDefeated())
}

func TestForEachSnapshot_DoesNotHoldLock(t *testing.T) {
	s := New(5)
	_, _ = s.TryEnter("a")
	_, _ = s.TryEnter("b")

	visited := 0
	s.ForEachSnapshot(func(m *Member) {
		visited++
		// would deadlock if the admission lock were held
		_, _ = s.TryEnter(model.PlayerID("late-" + string(m.ID)))
	})
	assert.Equal(t, 2, visited)
	assert.Equal(t, 4, s.Len())
}

func TestDrain(t *testing.T) {
	s := New(3)
	_, _ = s.TryEnter("a")
	_, _ = s.TryEnter("b")

	drained := s.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Drain())
	res, _ := s.TryEnter("c")
	assert.Equal(t, model.EnterNotOpen, res)
}
