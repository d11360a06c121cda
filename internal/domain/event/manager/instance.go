// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/domain/event/lifecycle"
	"github.com/ManuGH/eventd/internal/domain/event/membership"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/reward"
	"github.com/ManuGH/eventd/internal/domain/event/waves"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
)

// Instance is one running event. A single driver goroutine moves it through
// its phases; world callbacks and admissions arrive from other goroutines.
type Instance struct {
	id        string
	def       config.EventDefinition
	key       model.EventKey
	hooks     ports.VariantHooks
	deps      Deps
	m         ports.Map
	ledger    *reward.Ledger
	members   *membership.Set
	waves     *waves.Scheduler
	createdAt time.Time
	logger    zerolog.Logger
	tracer    trace.Tracer

	publishTimeout time.Duration
	settleTimeout  time.Duration
	sendLog        rate.Sometimes

	phase     atomic.Int32
	deadline  atomic.Int64 // unix nanos of the current timed phase end, 0 when untimed
	playStart atomic.Int64
	endReason atomic.Value // model.ReasonCode
	result    atomic.Pointer[reward.Result]

	// life is cancelled by forced shutdown; scope is the early-termination
	// scope for Open, Countdown and Playing and is a child of life.
	life        context.Context
	lifeCancel  context.CancelCauseFunc
	scope       context.Context
	scopeCancel context.CancelCauseFunc

	exitMu     sync.Mutex
	exitCancel context.CancelCauseFunc

	transMu sync.Mutex
	span    trace.Span

	// hookMu serializes gameplay hook calls. EndGame never takes it.
	hookMu sync.Mutex

	unsubscribe func()
	disposeOnce sync.Once
	onDisposed  func(*Instance)
	done        chan struct{}
}

func newInstance(parent context.Context, id string, def config.EventDefinition, key model.EventKey,
	hooks ports.VariantHooks, deps Deps, m ports.Map, ledger *reward.Ledger, opts Options) *Instance {
	inst := &Instance{
		id:             id,
		def:            def,
		key:            key,
		hooks:          hooks,
		deps:           deps,
		m:              m,
		ledger:         ledger,
		members:        membership.New(def.Capacity),
		createdAt:      time.Now(),
		tracer:         opts.Tracer,
		publishTimeout: opts.PublishTimeout,
		settleTimeout:  opts.SettleTimeout,
		sendLog:        rate.Sometimes{Interval: 10 * time.Second},
		done:           make(chan struct{}),
	}
	inst.logger = log.Derive(func(c *zerolog.Context) {
		*c = c.Str(log.FieldComponent, "instance").
			Str(log.FieldInstanceID, id).
			Str(log.FieldEventKey, key.String()).
			Str(log.FieldVariant, string(def.Variant)).
			Str("event_name", def.Name)
	})
	inst.life, inst.lifeCancel = context.WithCancelCause(parent)
	inst.scope, inst.scopeCancel = context.WithCancelCause(inst.life)
	inst.endReason.Store(model.RNone)
	inst.phase.Store(int32(model.PhaseOpen))
	inst.waves = waves.New(def.Waves, waves.Callbacks{
		Spawn:    inst.spawnWave,
		Announce: inst.announceWave,
		Changed:  inst.waveChanged,
	})
	inst.unsubscribe = m.Subscribe(mapListener{inst: inst})
	inst.startSpan(model.PhaseOpen)
	inst.setDeadline(def.OpenWindow)
	return inst
}

func (i *Instance) ID() string                         { return i.id }
func (i *Instance) Key() model.EventKey                { return i.key }
func (i *Instance) Map() ports.Map                     { return i.m }
func (i *Instance) Definition() config.EventDefinition { return i.def }
func (i *Instance) CreatedAt() time.Time               { return i.createdAt }

// Done is closed when the driver goroutine has returned.
func (i *Instance) Done() <-chan struct{} { return i.done }

func (i *Instance) Phase() model.Phase { return model.Phase(i.phase.Load()) }

// EndReason is the reason the instance left Playing (or was disposed early).
func (i *Instance) EndReason() model.ReasonCode {
	return i.endReason.Load().(model.ReasonCode)
}

// Result returns the settlement once WindDown has completed it.
func (i *Instance) Result() (reward.Result, bool) {
	r := i.result.Load()
	if r == nil {
		return reward.Result{}, false
	}
	return *r, true
}

// Remaining reports the time left in the current timed phase.
func (i *Instance) Remaining() time.Duration {
	d := i.deadline.Load()
	if d == 0 {
		return 0
	}
	return max(0, time.Until(time.Unix(0, d)))
}

// ActiveWaves returns the wave numbers live right now.
func (i *Instance) ActiveWaves() []int { return i.waves.Active() }

// Elapsed is the time since Playing began, or zero before that.
func (i *Instance) Elapsed() time.Duration {
	start := i.playStart.Load()
	if start == 0 {
		return 0
	}
	return time.Since(time.Unix(0, start))
}

func (i *Instance) Members() []model.PlayerID { return i.members.IDs() }

// MemberCount returns the current membership size.
func (i *Instance) MemberCount() int { return i.members.Len() }

func (i *Instance) IsMember(player model.PlayerID) bool {
	_, ok := i.members.Get(player)
	return ok
}

func (i *Instance) Alive() []model.PlayerID {
	var out []model.PlayerID
	i.members.ForEachSnapshot(func(m *membership.Member) {
		if !m.Defeated() {
			out = append(out, m.ID)
		}
	})
	return out
}

func (i *Instance) AddScore(player model.PlayerID, delta int64) int64 {
	m, ok := i.members.Get(player)
	if !ok {
		return 0
	}
	return m.AddScore(delta)
}

func (i *Instance) Score(player model.PlayerID) int64 {
	m, ok := i.members.Get(player)
	if !ok {
		return 0
	}
	return m.Score()
}

// Defeat eliminates a player. The player stays a finisher but is sent to
// the safe zone and no longer counts as alive.
func (i *Instance) Defeat(ctx context.Context, player model.PlayerID, reason string) {
	m, ok := i.members.Get(player)
	if !ok || !m.MarkDefeated() {
		return
	}
	i.Send(ctx, player, ports.Message{
		Kind:   ports.MsgEliminated,
		Text:   "You have been eliminated.",
		Fields: map[string]any{"reason": reason},
	})
	if m.MarkEvicted() {
		if err := i.deps.World.EvictToSafeZone(ctx, player); err != nil {
			i.logger.Warn().Err(err).Str(log.FieldPlayer, string(player)).Msg("evict defeated player")
		}
	}
}

// Send delivers a message. Offline players are skipped silently; other
// failures are logged at most once per interval.
func (i *Instance) Send(ctx context.Context, player model.PlayerID, msg ports.Message) {
	err := i.deps.Messenger.Send(ctx, player, msg)
	if err == nil || errors.Is(err, ports.ErrPlayerOffline) {
		return
	}
	i.sendLog.Do(func() {
		i.logger.Warn().Err(err).
			Str(log.FieldPlayer, string(player)).
			Str("kind", string(msg.Kind)).
			Msg("message delivery failed")
	})
}

// Broadcast sends msg to a snapshot of the current members.
func (i *Instance) Broadcast(ctx context.Context, msg ports.Message) {
	i.members.ForEachSnapshot(func(m *membership.Member) {
		i.Send(ctx, m.ID, msg)
	})
}

// EndGame leaves Playing early. Calls outside Playing and repeated calls
// are ignored.
func (i *Instance) EndGame(reason model.ReasonCode) {
	if i.Phase() != model.PhasePlaying {
		return
	}
	if reason == model.RNone {
		reason = model.RWon
	}
	i.scopeCancel(lifecycle.NewReasonError(reason, "", nil))
}

// Terminate force-disposes the instance from any phase.
func (i *Instance) Terminate(reason model.ReasonCode, detail string) {
	i.lifeCancel(lifecycle.NewReasonError(reason, detail, nil))
}

// TryEnter admits a player while the instance is Open and places them at
// the entrance. Rejections are result values, not errors.
func (i *Instance) TryEnter(ctx context.Context, player model.PlayerID) (model.EnterResult, error) {
	if i.Phase() != model.PhaseOpen {
		metrics.IncAdmission(i.def.Name, model.EnterNotOpen.String())
		return model.EnterNotOpen, nil
	}
	_, rejoin := i.members.Get(player)
	res, _ := i.members.TryEnter(player)
	metrics.IncAdmission(i.def.Name, res.String())
	if res != model.EnterSuccess {
		return res, nil
	}
	if err := i.deps.World.EnterMap(ctx, player, i.m, *i.def.Entrance); err != nil {
		if !rejoin {
			i.members.Remove(player)
		}
		return model.EnterNotOpen, fmt.Errorf("enter map: %w", err)
	}
	if !rejoin {
		i.publishMembership(player, true)
	}
	return model.EnterSuccess, nil
}

// Leave removes a player that asked to leave and sends them to the safe zone.
func (i *Instance) Leave(ctx context.Context, player model.PlayerID) bool {
	lastPos, _ := i.m.PositionOf(player)
	return i.leave(ctx, player, lastPos, true)
}

func (i *Instance) leave(ctx context.Context, player model.PlayerID, lastPos model.Point, evict bool) bool {
	m, emptied := i.members.Remove(player)
	if m == nil {
		return false
	}
	if evict && m.MarkEvicted() {
		if err := i.deps.World.EvictToSafeZone(ctx, player); err != nil {
			i.logger.Warn().Err(err).Str(log.FieldPlayer, string(player)).Msg("evict leaving player")
		}
	}
	i.publishMembership(player, false)

	i.gameplay(ctx, "OnPlayerLeft", func(ctx context.Context) error {
		return i.hooks.OnPlayerLeft(ctx, i, player, lastPos)
	})
	if emptied {
		i.cut(lifecycle.NewReasonError(model.REmpty, "", nil))
	}
	return true
}

// cut ends the current timed wait early: the countdown, the play time or
// the exit delay. The admission window always runs to its end.
func (i *Instance) cut(cause error) {
	switch i.Phase() {
	case model.PhaseCountdown, model.PhasePlaying:
		i.scopeCancel(cause)
	}
	i.exitMu.Lock()
	if i.exitCancel != nil {
		i.exitCancel(cause)
	}
	i.exitMu.Unlock()
}

var _ ports.Instance = (*Instance)(nil)
