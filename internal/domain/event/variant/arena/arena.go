// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package arena implements the survival-arena variant: a monster pool,
// explosions that shove nearby players, and a map that shrinks as the
// live-object count falls. Last one standing wins.
package arena

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/variant/base"
	"github.com/ManuGH/eventd/internal/log"
)

// Band is one proximity band of the explosion table: players within
// MaxDistance of the blast are pushed Push tiles away.
type Band struct {
	MaxDistance int `yaml:"max_distance"`
	Push        int `yaml:"push"`
}

// Explosion is the monster-death blast table.
type Explosion struct {
	Chance float64 `yaml:"chance"`
	Bands  []Band  `yaml:"bands"`
}

// pushFor returns the displacement for a player at distance d, or 0 when
// the player is outside every band.
func (e Explosion) pushFor(d int) int {
	for _, b := range e.Bands {
		if d <= b.MaxDistance {
			return b.Push
		}
	}
	return 0
}

func (e Explosion) reach() int {
	r := 0
	for _, b := range e.Bands {
		r = max(r, b.MaxDistance)
	}
	return r
}

// TrapStage blocks areas once the live-object count drops to Threshold.
type TrapStage struct {
	Threshold    int          `yaml:"threshold"`
	Blocked      []model.Area `yaml:"blocked"`
	Announcement string       `yaml:"announcement"`
}

// Config is the arena block of an event definition.
type Config struct {
	Monsters           model.MonsterSpawn `yaml:"monsters"`
	Explosion          Explosion          `yaml:"explosion"`
	Traps              []TrapStage        `yaml:"traps"`
	KillScore          int64              `yaml:"kill_score"`
	WinScore           int64              `yaml:"win_score"`
	WinExperience      int64              `yaml:"win_experience"` // scaled by level+1
	WinMoney           int64              `yaml:"win_money"`
	SurvivorExperience int64              `yaml:"survivor_experience"`
}

// Validate checks the block. Bands must be ordered nearest first with a
// push that never grows with distance; trap thresholds must fall.
func (c Config) Validate() error {
	var errs []error
	if c.Monsters.Type == "" || c.Monsters.Count < 1 {
		errs = append(errs, errors.New("monsters: type and a positive count are required"))
	}
	if c.Explosion.Chance < 0 || c.Explosion.Chance > 1 {
		errs = append(errs, fmt.Errorf("explosion chance %.2f outside [0,1]", c.Explosion.Chance))
	}
	for i := 1; i < len(c.Explosion.Bands); i++ {
		prev, cur := c.Explosion.Bands[i-1], c.Explosion.Bands[i]
		if cur.MaxDistance <= prev.MaxDistance || cur.Push > prev.Push {
			errs = append(errs, fmt.Errorf("explosion band %d: distance must grow and push must not", i))
		}
	}
	for i := 1; i < len(c.Traps); i++ {
		if c.Traps[i].Threshold >= c.Traps[i-1].Threshold {
			errs = append(errs, fmt.Errorf("trap stage %d: thresholds must decrease", i))
		}
	}
	return errors.Join(errs...)
}

// Option customises a Variant.
type Option func(*Variant)

// WithRand replaces the explosion dice.
func WithRand(fn func() float64) Option {
	return func(v *Variant) { v.roll = fn }
}

// Variant is the survival-arena rule set. One value serves one instance.
type Variant struct {
	base.Base
	cfg  Config
	roll func() float64

	mu       sync.Mutex
	monsters map[model.ObjectID]struct{}
	stage    int // trap stages applied
	winner   model.PlayerID
	over     bool
}

func New(cfg Config, opts ...Option) *Variant {
	v := &Variant{
		cfg:      cfg,
		roll:     rand.Float64,
		monsters: make(map[model.ObjectID]struct{}),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *Variant) Kind() model.VariantKind { return model.VariantArena }

func (v *Variant) OnGameStart(ctx context.Context, inst ports.Instance, _ []model.PlayerID) error {
	spawned, err := base.SpawnMonsters(ctx, inst.Map(), []model.MonsterSpawn{v.cfg.Monsters})
	v.track(spawned)
	if err != nil {
		return err
	}
	return v.settle(ctx, inst)
}

// SpawnWave adds reinforcements to the tracked pool.
func (v *Variant) SpawnWave(ctx context.Context, inst ports.Instance, wave model.SpawnWave) error {
	spawned, err := base.SpawnMonsters(ctx, inst.Map(), wave.Spawns)
	v.track(spawned)
	return err
}

func (v *Variant) track(objs []model.Object) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, o := range objs {
		v.monsters[o.ID] = struct{}{}
	}
}

// LiveMonsters returns the size of the monster pool.
func (v *Variant) LiveMonsters() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.monsters)
}

func (v *Variant) OnMonsterDied(ctx context.Context, inst ports.Instance, monster model.Object, killer model.PlayerID) error {
	v.mu.Lock()
	_, ours := v.monsters[monster.ID]
	delete(v.monsters, monster.ID)
	v.mu.Unlock()
	if !ours {
		return nil
	}
	if killer != "" {
		inst.AddScore(killer, v.cfg.KillScore)
	}
	if v.cfg.Explosion.Chance > 0 && v.roll() < v.cfg.Explosion.Chance {
		v.explode(ctx, inst, monster.Position)
		v.eliminateStranded(ctx, inst)
	}
	return v.settle(ctx, inst)
}

// explode shoves every live player near the blast directly away from it.
func (v *Variant) explode(ctx context.Context, inst ports.Instance, at model.Point) {
	m := inst.Map()
	bounds := m.Bounds()
	for _, obj := range m.ObjectsInRange(at, v.cfg.Explosion.reach()) {
		if obj.Kind != model.ObjectPlayer || !inst.IsMember(obj.Player) {
			continue
		}
		push := v.cfg.Explosion.pushFor(obj.Position.Distance(at))
		if push == 0 {
			continue
		}
		dx, dy := sign(obj.Position.X-at.X), sign(obj.Position.Y-at.Y)
		if dx == 0 && dy == 0 {
			dy = 1
		}
		to := bounds.Clamp(model.Point{X: obj.Position.X + dx*push, Y: obj.Position.Y + dy*push})
		if err := m.MovePlayer(ctx, obj.Player, to); err != nil {
			logger := log.WithComponent("arena")
			logger.Debug().Err(err).
				Str(log.FieldPlayer, string(obj.Player)).
				Msg("explosion push failed")
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func (v *Variant) OnAreaChanged(ctx context.Context, inst ports.Instance, player model.PlayerID, _, to model.Point) error {
	if !inst.Map().IsWalkable(to) {
		inst.Defeat(ctx, player, "stranded")
	}
	return v.settle(ctx, inst)
}

func (v *Variant) OnPlayerLeft(ctx context.Context, inst ports.Instance, _ model.PlayerID, _ model.Point) error {
	return v.settle(ctx, inst)
}

// settle applies due trap stages, eliminates stranded players and checks
// whether the arena is decided.
func (v *Variant) settle(ctx context.Context, inst ports.Instance) error {
	for {
		live := len(inst.Alive()) + v.LiveMonsters()
		stage, ok := v.nextStage(live)
		if !ok {
			break
		}
		for _, a := range stage.Blocked {
			inst.Map().SetWalkable(a, false)
		}
		if stage.Announcement != "" {
			inst.Broadcast(ctx, ports.Message{Kind: ports.MsgAnnouncement, Text: stage.Announcement})
		}
		v.eliminateStranded(ctx, inst)
	}

	alive := inst.Alive()
	monsters := v.LiveMonsters()

	v.mu.Lock()
	if v.over {
		v.mu.Unlock()
		return nil
	}
	var reason model.ReasonCode
	switch {
	case len(alive) == 1 && monsters == 0:
		v.winner = alive[0]
		reason = model.RWon
	case len(alive) == 0 && len(inst.Members()) > 0:
		reason = model.RNoSurvivors
	}
	if reason != model.RNone {
		v.over = true
	}
	winner := v.winner
	v.mu.Unlock()

	if reason == model.RWon {
		inst.AddScore(winner, v.cfg.WinScore)
	}
	if reason != model.RNone {
		inst.EndGame(reason)
	}
	return nil
}

func (v *Variant) nextStage(live int) (TrapStage, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stage >= len(v.cfg.Traps) || live > v.cfg.Traps[v.stage].Threshold {
		return TrapStage{}, false
	}
	st := v.cfg.Traps[v.stage]
	v.stage++
	return st, true
}

// Stage returns how many trap stages have closed.
func (v *Variant) Stage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stage
}

func (v *Variant) eliminateStranded(ctx context.Context, inst ports.Instance) {
	m := inst.Map()
	for _, p := range inst.Alive() {
		if pos, ok := m.PositionOf(p); ok && !m.IsWalkable(pos) {
			inst.Defeat(ctx, p, "stranded")
		}
	}
}

func (v *Variant) IsWon(ports.Instance) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.winner != ""
}

// Winner returns the decided winner, if any.
func (v *Variant) Winner() model.PlayerID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.winner
}

// OnGameEnded decides the arena on time: the surviving finisher with the
// most kills wins, earlier admission breaking ties.
func (v *Variant) OnGameEnded(_ context.Context, inst ports.Instance, finishers []model.PlayerID) error {
	v.mu.Lock()
	if v.winner != "" {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	alive := make(map[model.PlayerID]bool)
	for _, p := range inst.Alive() {
		alive[p] = true
	}
	candidates := make([]model.PlayerID, 0, len(finishers))
	for _, p := range finishers {
		if alive[p] {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return inst.Score(candidates[i]) > inst.Score(candidates[j])
	})

	v.mu.Lock()
	v.winner = candidates[0]
	v.over = true
	v.mu.Unlock()
	inst.AddScore(candidates[0], v.cfg.WinScore)
	return nil
}

func (v *Variant) BonusFor(inst ports.Instance, e model.ScoreEntry, won bool) ports.Bonus {
	winner := v.Winner()
	if won && e.Player == winner {
		return ports.Bonus{
			Experience: v.cfg.WinExperience * int64(inst.Key().Level+1),
			Money:      v.cfg.WinMoney,
		}
	}
	for _, p := range inst.Alive() {
		if p == e.Player {
			return ports.Bonus{Experience: v.cfg.SurvivorExperience}
		}
	}
	return ports.Bonus{}
}

var _ ports.VariantHooks = (*Variant)(nil)
