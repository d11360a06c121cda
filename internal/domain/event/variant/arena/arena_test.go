// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package arena

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/reward"
	"github.com/ManuGH/eventd/internal/domain/event/variant/varianttest"
)

func never() float64 { return 0.99 }

func always() float64 { return 0 }

func TestArena_LastPlayerStandingWinsWithRankOne(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18}, "a", "b")
	v := New(Config{
		Monsters:  model.MonsterSpawn{Type: "chaos_guard", Count: 4, Area: model.Area{X1: 60, Y1: 60, X2: 61, Y2: 61}},
		Explosion: Explosion{Chance: 0.5},
		Traps: []TrapStage{
			{Threshold: 3, Blocked: []model.Area{{X1: 11, Y1: 10, X2: 11, Y2: 10}}, Announcement: "the floor collapses"},
		},
		KillScore: 10,
		WinScore:  100,
	}, WithRand(never))

	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))
	monsters := inst.MapObj.Objects(model.ObjectMonster)
	require.Len(t, monsters, 4)

	for _, m := range monsters[:3] {
		require.NoError(t, v.OnMonsterDied(ctx, inst, m, "b"))
	}
	// live objects fell to 3: b's tile collapsed under it
	assert.Equal(t, 1, v.Stage())
	assert.True(t, inst.Defeated("b"))
	assert.Equal(t, 1, inst.World.Evictions("b"))
	assert.Equal(t, 1, inst.Messenger.Count("a", ports.MsgAnnouncement))
	assert.False(t, v.IsWon(inst))
	assert.Empty(t, inst.Ended())

	require.NoError(t, v.OnMonsterDied(ctx, inst, monsters[3], "a"))
	require.True(t, v.IsWon(inst))
	assert.Equal(t, model.PlayerID("a"), v.Winner())
	assert.Equal(t, []model.ReasonCode{model.RWon}, inst.Ended())

	// b out-killed a but the winner bonus puts a first
	assert.Equal(t, int64(30), inst.Score("b"))
	assert.Equal(t, int64(110), inst.Score("a"))
	require.NoError(t, v.OnGameEnded(ctx, inst, inst.Members()))
	board := reward.Rank(inst.Set.Snapshot(), v.RankDescending(), v.Winner())
	require.Len(t, board, 2)
	assert.Equal(t, model.PlayerID("a"), board[0].Player)
	assert.Equal(t, 1, board[0].Rank)

	// later callbacks do not end the game twice
	require.NoError(t, v.OnPlayerLeft(ctx, inst, "b", model.Point{}))
	assert.Len(t, inst.Ended(), 1)
}

func TestArena_ExplosionPushesByProximityBand(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18}, "near", "far", "outside")
	v := New(Config{
		Monsters: model.MonsterSpawn{Type: "chaos_guard", Count: 2, Area: model.Area{X1: 60, Y1: 60, X2: 60, Y2: 60}},
		Explosion: Explosion{Chance: 0.3, Bands: []Band{
			{MaxDistance: 1, Push: 5},
			{MaxDistance: 3, Push: 2},
		}},
	}, WithRand(always))
	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))

	require.NoError(t, inst.MapObj.MovePlayer(ctx, "near", model.Point{X: 61, Y: 60}))
	require.NoError(t, inst.MapObj.MovePlayer(ctx, "far", model.Point{X: 60, Y: 63}))
	require.NoError(t, inst.MapObj.MovePlayer(ctx, "outside", model.Point{X: 57, Y: 56}))

	monster := inst.MapObj.Objects(model.ObjectMonster)[0]
	require.NoError(t, v.OnMonsterDied(ctx, inst, monster, "near"))

	pos, _ := inst.MapObj.PositionOf("near")
	assert.Equal(t, model.Point{X: 66, Y: 60}, pos)
	pos, _ = inst.MapObj.PositionOf("far")
	assert.Equal(t, model.Point{X: 60, Y: 65}, pos)
	pos, _ = inst.MapObj.PositionOf("outside")
	assert.Equal(t, model.Point{X: 57, Y: 56}, pos)
}

func TestArena_ExplosionOntoCollapsedTileEliminates(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18}, "p", "q")
	v := New(Config{
		Monsters:  model.MonsterSpawn{Type: "g", Count: 2, Area: model.Area{X1: 60, Y1: 60, X2: 60, Y2: 60}},
		Explosion: Explosion{Chance: 1, Bands: []Band{{MaxDistance: 1, Push: 3}}},
	}, WithRand(always))
	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))

	inst.MapObj.SetWalkable(model.Area{X1: 64, Y1: 60, X2: 64, Y2: 60}, false)
	require.NoError(t, inst.MapObj.MovePlayer(ctx, "p", model.Point{X: 61, Y: 60}))

	require.NoError(t, v.OnMonsterDied(ctx, inst, inst.MapObj.Objects(model.ObjectMonster)[0], ""))
	// blasted from 61 onto the collapsed tile at 64
	assert.True(t, inst.Defeated("p"))
	assert.Equal(t, 1, inst.World.Evictions("p"))
	assert.False(t, inst.Defeated("q"))
	assert.False(t, v.IsWon(inst), "a monster is still alive")
}

func TestArena_WinnerOutranksHigherKillCount(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18}, "a", "b")
	v := New(Config{
		Monsters:  model.MonsterSpawn{Type: "g", Count: 13},
		KillScore: 1,
		WinScore:  10,
	}, WithRand(never))
	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))
	monsters := inst.MapObj.Objects(model.ObjectMonster)
	require.Len(t, monsters, 13)

	for _, m := range monsters[:12] {
		require.NoError(t, v.OnMonsterDied(ctx, inst, m, "b"))
	}
	inst.Defeat(ctx, "b", "slain")
	require.NoError(t, v.OnMonsterDied(ctx, inst, monsters[12], "a"))
	require.Equal(t, model.PlayerID("a"), v.Winner())

	board := reward.Rank(inst.Set.Snapshot(), v.RankDescending(), v.Winner())
	assert.Equal(t, []model.ScoreEntry{
		{Player: "a", Rank: 1, Score: 11},
		{Player: "b", Rank: 2, Score: 12},
	}, board)
}

func TestArena_ExplosionClampsToBounds(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18}, "p", "q")
	v := New(Config{
		Monsters:  model.MonsterSpawn{Type: "g", Count: 2, Area: model.Area{X1: 99, Y1: 99, X2: 99, Y2: 99}},
		Explosion: Explosion{Chance: 1, Bands: []Band{{MaxDistance: 2, Push: 10}}},
	}, WithRand(always))
	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))
	require.NoError(t, inst.MapObj.MovePlayer(ctx, "p", model.Point{X: 100, Y: 100}))

	require.NoError(t, v.OnMonsterDied(ctx, inst, inst.MapObj.Objects(model.ObjectMonster)[0], ""))
	pos, _ := inst.MapObj.PositionOf("p")
	assert.Equal(t, model.Point{X: 100, Y: 100}, pos)
}

func TestArena_StrandedOnMove(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18}, "p", "q")
	v := New(Config{Monsters: model.MonsterSpawn{Type: "g", Count: 1}}, WithRand(never))
	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))

	hole := model.Area{X1: 30, Y1: 30, X2: 31, Y2: 31}
	inst.MapObj.SetWalkable(hole, false)
	require.NoError(t, v.OnAreaChanged(ctx, inst, "q", model.Point{X: 11, Y: 10}, model.Point{X: 30, Y: 31}))
	assert.True(t, inst.Defeated("q"))
	assert.False(t, v.IsWon(inst), "a monster is still alive")
}

func TestArena_NoSurvivors(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18}, "p")
	v := New(Config{Monsters: model.MonsterSpawn{Type: "g", Count: 1}}, WithRand(never))
	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))

	inst.MapObj.SetWalkable(model.Area{X1: 0, Y1: 0, X2: 100, Y2: 100}, false)
	require.NoError(t, v.OnAreaChanged(ctx, inst, "p", model.Point{}, model.Point{X: 10, Y: 10}))
	assert.Equal(t, []model.ReasonCode{model.RNoSurvivors}, inst.Ended())
	assert.False(t, v.IsWon(inst))
}

func TestArena_TimeExpiryHighestKillsWins(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 18, Level: 2}, "a", "b", "c")
	v := New(Config{
		Monsters:           model.MonsterSpawn{Type: "g", Count: 5},
		KillScore:          1,
		WinScore:           1000,
		WinExperience:      100,
		WinMoney:           7,
		SurvivorExperience: 3,
	}, WithRand(never))
	require.NoError(t, v.OnGameStart(ctx, inst, inst.Members()))
	monsters := inst.MapObj.Objects(model.ObjectMonster)
	require.NoError(t, v.OnMonsterDied(ctx, inst, monsters[0], "b"))
	require.NoError(t, v.OnMonsterDied(ctx, inst, monsters[1], "c"))
	require.NoError(t, v.OnMonsterDied(ctx, inst, monsters[2], "c"))
	inst.Defeat(ctx, "c", "slain")

	require.NoError(t, v.OnGameEnded(ctx, inst, inst.Members()))
	assert.Equal(t, model.PlayerID("b"), v.Winner())
	assert.True(t, v.IsWon(inst))
	assert.Equal(t, ports.Bonus{Experience: 300, Money: 7}, v.BonusFor(inst, model.ScoreEntry{Player: "b"}, true))
	assert.Equal(t, ports.Bonus{Experience: 3}, v.BonusFor(inst, model.ScoreEntry{Player: "a"}, true))
	assert.Equal(t, ports.Bonus{}, v.BonusFor(inst, model.ScoreEntry{Player: "c"}, true))
}

func TestConfigValidate(t *testing.T) {
	ok := Config{
		Monsters:  model.MonsterSpawn{Type: "g", Count: 10},
		Explosion: Explosion{Chance: 0.3, Bands: []Band{{1, 3}, {2, 2}, {3, 1}}},
		Traps:     []TrapStage{{Threshold: 30}, {Threshold: 20}, {Threshold: 10}},
	}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Explosion.Bands = []Band{{1, 1}, {2, 3}}
	require.Error(t, bad.Validate())

	bad = ok
	bad.Traps = []TrapStage{{Threshold: 10}, {Threshold: 20}}
	require.Error(t, bad.Validate())

	bad = ok
	bad.Explosion.Chance = 1.5
	require.Error(t, bad.Validate())
}
