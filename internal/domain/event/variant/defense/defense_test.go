package defense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/variant/varianttest"
)

func TestDefense_ScoreWeightedByLevel(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 9, Level: 3}, "a", "b")
	v := New(Config{KillScore: 2, ExperiencePerPoint: 10, MoneyByRank: []int64{500, 100}})

	require.NoError(t, v.OnMonsterDied(ctx, inst, model.Object{}, "a"))
	require.NoError(t, v.OnMonsterDied(ctx, inst, model.Object{}, "a"))
	require.NoError(t, v.OnMonsterDied(ctx, inst, model.Object{}, "stranger"))
	require.NoError(t, v.OnMonsterDied(ctx, inst, model.Object{}, ""))

	assert.Equal(t, int64(16), inst.Score("a"))
	assert.Equal(t, int64(0), inst.Score("b"))
	assert.False(t, v.IsWon(inst))
	assert.True(t, v.RankDescending())
}

func TestDefense_RankPayout(t *testing.T) {
	v := New(Config{KillScore: 1, ExperiencePerPoint: 10, MoneyByRank: []int64{500, 100}})
	assert.Equal(t, ports.Bonus{Experience: 160, Money: 500}, v.BonusFor(nil, model.ScoreEntry{Rank: 1, Score: 16}, false))
	assert.Equal(t, ports.Bonus{Experience: 0, Money: 100}, v.BonusFor(nil, model.ScoreEntry{Rank: 2}, false))
	assert.Equal(t, ports.Bonus{Experience: 10}, v.BonusFor(nil, model.ScoreEntry{Rank: 3, Score: 1}, false))
}

func TestDefense_SpawnWave(t *testing.T) {
	ctx := context.Background()
	inst := varianttest.New(t, model.EventKey{MapNumber: 9}, "a")
	v := New(Config{KillScore: 1})
	require.NoError(t, v.SpawnWave(ctx, inst, model.SpawnWave{
		Number: 1,
		Spawns: []model.MonsterSpawn{{Type: "bat", Count: 3}, {Type: "orc", Count: 2}},
	}))
	assert.Len(t, inst.MapObj.Objects(model.ObjectMonster), 5)

	require.NoError(t, v.RenderScoreboard(ctx, inst, "a", []model.ScoreEntry{{Player: "a", Rank: 1, Score: 4}}, false))
	inbox := inst.Messenger.Inbox("a")
	require.Len(t, inbox, 1)
	assert.Equal(t, ports.MsgScoreboard, inbox[0].Kind)
	assert.Equal(t, "failure", inbox[0].Fields["result"])
	assert.Equal(t, 1, inbox[0].Fields["rank"])
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{KillScore: 1}.Validate())
	require.Error(t, Config{}.Validate())
	require.Error(t, Config{KillScore: 1, MoneyByRank: []int64{-1}}.Validate())
}
