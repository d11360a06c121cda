// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package capture implements the objective-capture variant: break the gate,
// destroy the statue, carry the quest item it drops back to the archangel.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/variant/base"
	"github.com/ManuGH/eventd/internal/log"
)

// Objective places one fixed object.
type Objective struct {
	Type string     `yaml:"type"`
	Area model.Area `yaml:"area"`
}

// Scores are the per-action score awards.
type Scores struct {
	Kill        int64 `yaml:"kill"`
	Gate        int64 `yaml:"gate"`
	Statue      int64 `yaml:"statue"`
	Return      int64 `yaml:"return"`
	FailPenalty int64 `yaml:"fail_penalty"`
}

// Config is the capture block of an event definition.
type Config struct {
	Gate          Objective  `yaml:"gate"`
	GateBlock     model.Area `yaml:"gate_block"` // unwalkable while the gate stands
	Statue        Objective  `yaml:"statue"`
	Archangel     Objective  `yaml:"archangel"`
	QuestItem     string     `yaml:"quest_item"`
	Scores        Scores     `yaml:"scores"`
	WinExperience int64      `yaml:"win_experience"` // scaled by level+1
	WinMoney      int64      `yaml:"win_money"`
}

// Validate checks the block.
func (c Config) Validate() error {
	var errs []error
	if c.Gate.Type == "" || c.Statue.Type == "" || c.Archangel.Type == "" {
		errs = append(errs, errors.New("gate, statue and archangel types are required"))
	}
	if c.QuestItem == "" {
		errs = append(errs, errors.New("quest_item is required"))
	}
	if c.Scores.FailPenalty < 0 {
		errs = append(errs, errors.New("fail_penalty must not be negative"))
	}
	return errors.Join(errs...)
}

// Status values broadcast as the objectives fall.
const (
	StatusGateIntact      = "gate_intact"
	StatusGateDestroyed   = "gate_destroyed"
	StatusStatueDestroyed = "statue_destroyed"
	StatusItemHeld        = "item_held"
	StatusSuccess         = "success"
)

// Variant is the objective-capture rule set. One value serves one instance.
type Variant struct {
	base.Base
	cfg Config

	mu            sync.Mutex
	gateID        model.ObjectID
	statueID      model.ObjectID
	archangelID   model.ObjectID
	gateDestroyed bool
	gateBy        model.PlayerID
	statueBy      model.PlayerID
	itemID        model.ObjectID
	holder        model.PlayerID
	returnedBy    model.PlayerID
}

func New(cfg Config) *Variant {
	return &Variant{cfg: cfg}
}

func (v *Variant) Kind() model.VariantKind { return model.VariantCapture }

func (v *Variant) OnGameStart(ctx context.Context, inst ports.Instance, _ []model.PlayerID) error {
	m := inst.Map()
	gate, err := m.SpawnNPC(ctx, model.ObjectObjective, v.cfg.Gate.Type, v.cfg.Gate.Area)
	if err != nil {
		return fmt.Errorf("spawn gate: %w", err)
	}
	statue, err := m.SpawnNPC(ctx, model.ObjectObjective, v.cfg.Statue.Type, v.cfg.Statue.Area)
	if err != nil {
		return fmt.Errorf("spawn statue: %w", err)
	}
	angel, err := m.SpawnNPC(ctx, model.ObjectNPC, v.cfg.Archangel.Type, v.cfg.Archangel.Area)
	if err != nil {
		return fmt.Errorf("spawn archangel: %w", err)
	}
	if !v.cfg.GateBlock.Empty() {
		m.SetWalkable(v.cfg.GateBlock, false)
	}

	v.mu.Lock()
	v.gateID, v.statueID, v.archangelID = gate.ID, statue.ID, angel.ID
	v.mu.Unlock()

	v.broadcastStatus(ctx, inst)
	return nil
}

func (v *Variant) OnMonsterDied(_ context.Context, inst ports.Instance, _ model.Object, killer model.PlayerID) error {
	if killer != "" {
		inst.AddScore(killer, v.cfg.Scores.Kill)
	}
	return nil
}

func (v *Variant) OnObjectiveDestroyed(ctx context.Context, inst ports.Instance, obj model.Object, by model.PlayerID) error {
	v.mu.Lock()
	switch obj.ID {
	case v.gateID:
		if v.gateDestroyed {
			v.mu.Unlock()
			return nil
		}
		v.gateDestroyed = true
		v.gateBy = by
		v.mu.Unlock()

		if !v.cfg.GateBlock.Empty() {
			inst.Map().SetWalkable(v.cfg.GateBlock, true)
		}
		if by != "" {
			inst.AddScore(by, v.cfg.Scores.Gate)
		}
	case v.statueID:
		if v.statueBy != "" || v.itemID != 0 {
			v.mu.Unlock()
			return nil
		}
		v.statueBy = by
		v.mu.Unlock()

		if by != "" {
			inst.AddScore(by, v.cfg.Scores.Statue)
		}
		item, err := inst.Map().DropItem(ctx, obj.Position, v.cfg.QuestItem)
		if err != nil {
			return fmt.Errorf("drop quest item: %w", err)
		}
		v.mu.Lock()
		v.itemID = item.ID
		v.mu.Unlock()
	default:
		v.mu.Unlock()
		return nil
	}
	v.broadcastStatus(ctx, inst)
	return nil
}

func (v *Variant) OnItemPickedUp(ctx context.Context, inst ports.Instance, player model.PlayerID, item model.Object) error {
	if item.Type != v.cfg.QuestItem {
		return nil
	}
	v.mu.Lock()
	v.holder = player
	v.itemID = 0
	v.mu.Unlock()
	v.broadcastStatus(ctx, inst)
	return nil
}

// OnPlayerLeft re-drops the quest item where its holder was last seen.
func (v *Variant) OnPlayerLeft(ctx context.Context, inst ports.Instance, player model.PlayerID, lastPos model.Point) error {
	v.mu.Lock()
	if v.holder != player || v.returnedBy != "" {
		v.mu.Unlock()
		return nil
	}
	v.holder = ""
	v.mu.Unlock()

	item, err := inst.Map().DropItem(ctx, lastPos, v.cfg.QuestItem)
	if err != nil {
		return fmt.Errorf("re-drop quest item: %w", err)
	}
	v.mu.Lock()
	v.itemID = item.ID
	v.mu.Unlock()

	logger := log.WithComponent("capture")
	logger.Debug().
		Str(log.FieldInstanceID, inst.ID()).
		Str(log.FieldPlayer, string(player)).
		Msg("quest item holder left, item dropped")
	v.broadcastStatus(ctx, inst)
	return nil
}

func (v *Variant) OnTalkToNPC(ctx context.Context, inst ports.Instance, player model.PlayerID, npc model.Object) error {
	v.mu.Lock()
	if npc.ID != v.archangelID || v.holder != player || v.returnedBy != "" {
		v.mu.Unlock()
		return nil
	}
	v.returnedBy = player
	v.holder = ""
	v.mu.Unlock()

	inst.AddScore(player, v.cfg.Scores.Return)
	v.broadcastStatus(ctx, inst)
	inst.EndGame(model.RWon)
	return nil
}

func (v *Variant) IsWon(ports.Instance) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.returnedBy != ""
}

// BonusFor pays the returner in full, the gate and statue breakers half and
// everyone else a quarter. Without a winner everyone pays the penalty.
func (v *Variant) BonusFor(inst ports.Instance, e model.ScoreEntry, won bool) ports.Bonus {
	if !won {
		return ports.Bonus{Score: -v.cfg.Scores.FailPenalty}
	}
	v.mu.Lock()
	returner, gateBy, statueBy := v.returnedBy, v.gateBy, v.statueBy
	v.mu.Unlock()

	scale := int64(inst.Key().Level + 1)
	exp, money := v.cfg.WinExperience*scale, v.cfg.WinMoney
	switch e.Player {
	case returner:
		return ports.Bonus{Experience: exp, Money: money}
	case gateBy, statueBy:
		return ports.Bonus{Experience: exp / 2, Money: money / 2}
	default:
		return ports.Bonus{Experience: exp / 4, Money: money / 4}
	}
}

// Holder returns the player carrying the quest item, if any.
func (v *Variant) Holder() model.PlayerID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.holder
}

func (v *Variant) status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.returnedBy != "":
		return StatusSuccess
	case v.holder != "":
		return StatusItemHeld
	case v.statueBy != "" || v.itemID != 0:
		return StatusStatueDestroyed
	case v.gateDestroyed:
		return StatusGateDestroyed
	default:
		return StatusGateIntact
	}
}

func (v *Variant) broadcastStatus(ctx context.Context, inst ports.Instance) {
	st := v.status()
	inst.Broadcast(ctx, ports.Message{
		Kind:   ports.MsgStatus,
		Text:   st,
		Fields: map[string]any{"status": st, "holder": string(v.Holder())},
	})
}

var _ ports.VariantHooks = (*Variant)(nil)
