package manager

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/lifecycle"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
)

// callHook runs one variant hook. A panic or an error that is not caused by
// the instance being cancelled terminates the instance with R_HOOK_FAILURE.
func (i *Instance) callHook(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook %s panicked: %v", name, r)
			i.logger.Error().
				Str(log.FieldHook, name).
				Bytes("stack", debug.Stack()).
				Msg("variant hook panicked")
		}
		if err == nil {
			return
		}
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			err = nil
			return
		}
		metrics.IncHookFailure(name)
		i.logger.Error().Err(err).
			Str(log.FieldHook, name).
			Str(log.FieldPhase, i.Phase().String()).
			Msg("variant hook failed")
		i.lifeCancel(lifecycle.NewReasonError(model.RHookFailure, name, err))
	}()
	return fn(ctx)
}

// gameplay forwards a world callback to the variant while Playing. Calls are
// serialized; EndGame from inside a hook does not wait on them.
func (i *Instance) gameplay(ctx context.Context, name string, fn func(context.Context) error) {
	i.hookMu.Lock()
	defer i.hookMu.Unlock()
	if !i.Phase().AcceptsGameplay() {
		return
	}
	_ = i.callHook(ctx, name, fn)
}

// MonsterDied reports an NPC killed on the instance map.
func (i *Instance) MonsterDied(ctx context.Context, monster model.Object, killer model.PlayerID) {
	if killer != "" && !i.IsMember(killer) {
		killer = ""
	}
	i.gameplay(ctx, "OnMonsterDied", func(ctx context.Context) error {
		return i.hooks.OnMonsterDied(ctx, i, monster, killer)
	})
}

func (i *Instance) ObjectiveDestroyed(ctx context.Context, objective model.Object, by model.PlayerID) {
	i.gameplay(ctx, "OnObjectiveDestroyed", func(ctx context.Context) error {
		return i.hooks.OnObjectiveDestroyed(ctx, i, objective, by)
	})
}

func (i *Instance) ItemPickedUp(ctx context.Context, player model.PlayerID, item model.Object) {
	if !i.IsMember(player) {
		return
	}
	i.gameplay(ctx, "OnItemPickedUp", func(ctx context.Context) error {
		return i.hooks.OnItemPickedUp(ctx, i, player, item)
	})
}

func (i *Instance) TalkToNPC(ctx context.Context, player model.PlayerID, npc model.Object) {
	if !i.IsMember(player) {
		return
	}
	i.gameplay(ctx, "OnTalkToNPC", func(ctx context.Context) error {
		return i.hooks.OnTalkToNPC(ctx, i, player, npc)
	})
}

// PlayerMoved reports a member changing tiles.
func (i *Instance) PlayerMoved(ctx context.Context, player model.PlayerID, from, to model.Point) {
	if from == to || !i.IsMember(player) {
		return
	}
	i.gameplay(ctx, "OnAreaChanged", func(ctx context.Context) error {
		return i.hooks.OnAreaChanged(ctx, i, player, from, to)
	})
}

func (i *Instance) spawnWave(ctx context.Context, w model.SpawnWave) error {
	i.hookMu.Lock()
	defer i.hookMu.Unlock()
	if !i.Phase().AcceptsGameplay() {
		return nil
	}
	return i.callHook(ctx, "SpawnWave", func(ctx context.Context) error {
		return i.hooks.SpawnWave(ctx, i, w)
	})
}

func (i *Instance) announceWave(ctx context.Context, w model.SpawnWave) {
	if w.Announcement == "" {
		return
	}
	i.Broadcast(ctx, ports.Message{
		Kind:   ports.MsgAnnouncement,
		Text:   w.Announcement,
		Fields: map[string]any{"wave": w.Number},
	})
}

func (i *Instance) waveChanged(w model.SpawnWave, active bool) {
	if active {
		metrics.IncWaveActivation(string(i.def.Variant))
	}
	i.logger.Debug().Int(log.FieldWave, w.Number).Bool("active", active).Msg("wave changed")
	i.publish(model.TopicWave, model.WaveChanged{
		InstanceID: i.id,
		Key:        i.key,
		Wave:       w.Number,
		Active:     active,
		At:         time.Now(),
	})
}

// mapListener turns map object removals into membership changes. A player
// object that disappears without an eviction is a disconnect.
type mapListener struct {
	inst *Instance
}

func (l mapListener) ObjectAdded(model.Object) {}

func (l mapListener) ObjectRemoved(obj model.Object) {
	if obj.Kind != model.ObjectPlayer || obj.Player == "" {
		return
	}
	m, ok := l.inst.members.Get(obj.Player)
	if !ok || m.Evicted() {
		return
	}
	l.inst.leave(l.inst.life, obj.Player, obj.Position, false)
}

func (i *Instance) publishMembership(player model.PlayerID, joined bool) {
	i.publish(model.TopicMembership, model.MembershipChanged{
		InstanceID: i.id,
		Key:        i.key,
		Player:     player,
		Joined:     joined,
		At:         time.Now(),
	})
}

// publish is best effort. Slow subscribers lose events, never the instance.
func (i *Instance) publish(topic string, event any) {
	if i.deps.Bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), i.publishTimeout)
	defer cancel()
	if err := i.deps.Bus.Publish(ctx, topic, event); err != nil {
		i.logger.Debug().Err(err).Str("topic", topic).Msg("publish dropped")
	}
}
