// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package base holds the default hook behaviour shared by all variants.
// Variants embed Base and override what their rules need.
package base

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
)

type Base struct{}

func (Base) OnGameStart(context.Context, ports.Instance, []model.PlayerID) error { return nil }

// SpawnWave spawns the monsters listed on the wave.
func (Base) SpawnWave(ctx context.Context, inst ports.Instance, wave model.SpawnWave) error {
	_, err := SpawnMonsters(ctx, inst.Map(), wave.Spawns)
	return err
}

func (Base) OnMonsterDied(context.Context, ports.Instance, model.Object, model.PlayerID) error {
	return nil
}

func (Base) OnObjectiveDestroyed(context.Context, ports.Instance, model.Object, model.PlayerID) error {
	return nil
}

func (Base) OnItemPickedUp(context.Context, ports.Instance, model.PlayerID, model.Object) error {
	return nil
}

func (Base) OnTalkToNPC(context.Context, ports.Instance, model.PlayerID, model.Object) error {
	return nil
}

func (Base) OnAreaChanged(context.Context, ports.Instance, model.PlayerID, model.Point, model.Point) error {
	return nil
}

func (Base) OnPlayerLeft(context.Context, ports.Instance, model.PlayerID, model.Point) error {
	return nil
}

func (Base) IsWon(ports.Instance) bool { return false }

func (Base) OnGameEnded(context.Context, ports.Instance, []model.PlayerID) error { return nil }

func (Base) RankDescending() bool { return true }

func (Base) BonusFor(ports.Instance, model.ScoreEntry, bool) ports.Bonus { return ports.Bonus{} }

func (Base) RenderScoreboard(ctx context.Context, inst ports.Instance, player model.PlayerID, board []model.ScoreEntry, won bool) error {
	inst.Send(ctx, player, Scoreboard(player, board, won))
	return nil
}

// SpawnMonsters spawns every requested monster and returns what was placed.
func SpawnMonsters(ctx context.Context, m ports.Map, spawns []model.MonsterSpawn) ([]model.Object, error) {
	var out []model.Object
	for _, s := range spawns {
		for i := 0; i < s.Count; i++ {
			obj, err := m.SpawnNPC(ctx, model.ObjectMonster, s.Type, s.Area)
			if err != nil {
				return out, fmt.Errorf("spawn %s #%d: %w", s.Type, i+1, err)
			}
			out = append(out, obj)
		}
	}
	return out, nil
}

// Scoreboard builds the end-of-game message for one player.
func Scoreboard(player model.PlayerID, board []model.ScoreEntry, won bool) ports.Message {
	var sb strings.Builder
	own := model.ScoreEntry{}
	for _, e := range board {
		fmt.Fprintf(&sb, "#%d %s %d\n", e.Rank, e.Player, e.Score+e.BonusScore)
		if e.Player == player {
			own = e
		}
	}
	result := "failure"
	if won {
		result = "success"
	}
	return ports.Message{
		Kind: ports.MsgScoreboard,
		Text: sb.String(),
		Fields: map[string]any{
			"result":           result,
			"rank":             own.Rank,
			"score":            own.Score + own.BonusScore,
			"bonus_experience": own.BonusExperience,
			"bonus_money":      own.BonusMoney,
			"finishers":        len(board),
		},
	}
}
