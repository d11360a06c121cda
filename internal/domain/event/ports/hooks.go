// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import (
	"context"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// Instance is the surface a variant sees of the instance it runs in.
// All methods are safe for concurrent use.
type Instance interface {
	ID() string
	Key() model.EventKey
	Phase() model.Phase
	Map() Map
	Elapsed() time.Duration // time since Playing began

	Members() []model.PlayerID
	IsMember(player model.PlayerID) bool
	Alive() []model.PlayerID // members not defeated

	AddScore(player model.PlayerID, delta int64) int64
	Score(player model.PlayerID) int64
	Defeat(ctx context.Context, player model.PlayerID, reason string)

	Send(ctx context.Context, player model.PlayerID, msg Message)
	Broadcast(ctx context.Context, msg Message)

	// EndGame asks the engine to leave Playing now. Idempotent.
	EndGame(reason model.ReasonCode)
}

// Bonus is the variant's per-finisher end-of-game adjustment.
type Bonus struct {
	Score      int64
	Experience int64
	Money      int64
}

// VariantHooks are the per-game-type rules plugged into the lifecycle engine.
// Returning an error (or panicking) from any hook force-terminates the instance.
type VariantHooks interface {
	Kind() model.VariantKind

	OnGameStart(ctx context.Context, inst Instance, roster []model.PlayerID) error
	SpawnWave(ctx context.Context, inst Instance, wave model.SpawnWave) error

	OnMonsterDied(ctx context.Context, inst Instance, monster model.Object, killer model.PlayerID) error
	OnObjectiveDestroyed(ctx context.Context, inst Instance, objective model.Object, by model.PlayerID) error
	OnItemPickedUp(ctx context.Context, inst Instance, player model.PlayerID, item model.Object) error
	OnTalkToNPC(ctx context.Context, inst Instance, player model.PlayerID, npc model.Object) error
	OnAreaChanged(ctx context.Context, inst Instance, player model.PlayerID, from, to model.Point) error
	OnPlayerLeft(ctx context.Context, inst Instance, player model.PlayerID, lastPos model.Point) error

	IsWon(inst Instance) bool
	OnGameEnded(ctx context.Context, inst Instance, finishers []model.PlayerID) error

	// RankDescending selects the score sort direction for rank assignment.
	RankDescending() bool
	BonusFor(inst Instance, entry model.ScoreEntry, won bool) Bonus
	RenderScoreboard(ctx context.Context, inst Instance, player model.PlayerID, board []model.ScoreEntry, won bool) error
}

// WinnerReporter is implemented by variants that decide a sole winner.
// A won run ranks that player first.
type WinnerReporter interface {
	Winner() model.PlayerID
}
