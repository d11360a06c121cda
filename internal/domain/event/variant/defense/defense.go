// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package defense implements the wave-defense variant: survive the waves,
// score per kill weighted by difficulty, paid out by rank.
package defense

import (
	"context"
	"errors"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/variant/base"
)

// Config is the defense block of an event definition.
type Config struct {
	KillScore          int64   `yaml:"kill_score"` // multiplied by level+1
	ExperiencePerPoint int64   `yaml:"experience_per_point"`
	MoneyByRank        []int64 `yaml:"money_by_rank"` // index 0 is rank 1
}

func (c Config) Validate() error {
	if c.KillScore <= 0 {
		return errors.New("kill_score must be positive")
	}
	for _, m := range c.MoneyByRank {
		if m < 0 {
			return errors.New("money_by_rank entries must not be negative")
		}
	}
	return nil
}

// Variant is the wave-defense rule set. It keeps no per-instance state.
type Variant struct {
	base.Base
	cfg Config
}

func New(cfg Config) *Variant {
	return &Variant{cfg: cfg}
}

func (v *Variant) Kind() model.VariantKind { return model.VariantDefense }

func (v *Variant) OnMonsterDied(_ context.Context, inst ports.Instance, _ model.Object, killer model.PlayerID) error {
	if killer != "" && inst.IsMember(killer) {
		inst.AddScore(killer, v.cfg.KillScore*int64(inst.Key().Level+1))
	}
	return nil
}

func (v *Variant) BonusFor(_ ports.Instance, e model.ScoreEntry, _ bool) ports.Bonus {
	b := ports.Bonus{Experience: e.Score * v.cfg.ExperiencePerPoint}
	if e.Rank >= 1 && e.Rank <= len(v.cfg.MoneyByRank) {
		b.Money = v.cfg.MoneyByRank[e.Rank-1]
	}
	return b
}

var _ ports.VariantHooks = (*Variant)(nil)
