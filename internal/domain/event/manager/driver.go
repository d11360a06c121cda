// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ManuGH/eventd/internal/domain/event/lifecycle"
	"github.com/ManuGH/eventd/internal/domain/event/membership"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/reward"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
	"github.com/ManuGH/eventd/internal/telemetry"
)

// run drives the instance from Open to Disposed. It is the only goroutine
// that advances the phase, apart from a forced Dispose.
func (i *Instance) run() {
	defer close(i.done)
	defer func() {
		if r := recover(); r != nil {
			metrics.IncHookFailure("driver")
			i.logger.Error().
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("instance driver panicked")
			i.forceDispose(model.RHookFailure)
		}
	}()

	i.logger.Info().
		Int("capacity", i.def.Capacity).
		Dur("open_window", i.def.OpenWindow).
		Msg("instance open")

	if !i.runOpen() || !i.runCountdown() || !i.runPlaying() || !i.runWindDown() {
		return
	}
	i.advance(lifecycle.Event{Kind: lifecycle.EvExitElapsed}, 0)
	i.dispose(lifecycle.Event{Kind: lifecycle.EvDispose})
}

func (i *Instance) runOpen() bool {
	_ = lifecycle.Wait(i.scope, i.def.OpenWindow)
	n := i.members.CloseAdmission()
	if i.life.Err() != nil {
		i.forceDispose(i.lifeReason())
		return false
	}
	if n == 0 {
		i.dispose(lifecycle.Event{Kind: lifecycle.EvAbandoned})
		return false
	}
	return true
}

func (i *Instance) runCountdown() bool {
	i.advance(lifecycle.Event{Kind: lifecycle.EvWindowElapsed}, i.def.Countdown)
	if i.members.Len() == 0 {
		i.scopeCancel(lifecycle.NewReasonError(model.REmpty, "", nil))
	}
	err := i.guardedWait(i.scope, i.def.Countdown, "The event starts in %d seconds.")
	if i.life.Err() != nil {
		i.forceDispose(i.lifeReason())
		return false
	}
	if err != nil {
		reason := lifecycle.ReasonFromCause(err)
		i.setEndReason(reason)
		i.advance(lifecycle.Event{Kind: lifecycle.EvAborted, Reason: reason}, 0)
		i.dispose(lifecycle.Event{Kind: lifecycle.EvDispose})
		return false
	}
	return true
}

func (i *Instance) runPlaying() bool {
	i.playStart.Store(time.Now().UnixNano())
	i.advance(lifecycle.Event{Kind: lifecycle.EvCountdownElapsed}, i.def.PlayDuration)
	if i.members.Len() == 0 {
		i.scopeCancel(lifecycle.NewReasonError(model.REmpty, "", nil))
	}

	roster := i.members.IDs()
	i.gameplay(i.life, "OnGameStart", func(ctx context.Context) error {
		return i.hooks.OnGameStart(ctx, i, roster)
	})

	playCtx, stopPlay := context.WithCancel(i.scope)
	wavesDone := make(chan struct{})
	go func() {
		defer close(wavesDone)
		if err := i.waves.Run(playCtx); err != nil {
			i.logger.Debug().Err(err).Msg("wave scheduler stopped")
		}
	}()

	err := lifecycle.Wait(i.scope, i.def.PlayDuration)
	stopPlay()
	<-wavesDone
	i.waves.Clear()

	if i.life.Err() != nil {
		i.forceDispose(i.lifeReason())
		return false
	}
	reason := lifecycle.ReasonFromCause(err)
	i.setEndReason(reason)
	i.advance(lifecycle.Event{Kind: lifecycle.EvGameOver, Reason: reason}, i.def.ExitDelay)
	return true
}

// runWindDown settles the run and waits out the exit delay. Members that
// leave during the delay are not removed from the settled result.
func (i *Instance) runWindDown() bool {
	i.hookMu.Lock()
	finishers := i.members.Snapshot()
	ids := make([]model.PlayerID, len(finishers))
	for n, m := range finishers {
		ids[n] = m.ID
	}
	_ = i.callHook(i.life, "OnGameEnded", func(ctx context.Context) error {
		return i.hooks.OnGameEnded(ctx, i, ids)
	})
	won := i.EndReason() == model.RWon
	_ = i.callHook(i.life, "IsWon", func(context.Context) error {
		won = won || i.hooks.IsWon(i)
		return nil
	})
	i.hookMu.Unlock()

	if i.life.Err() != nil {
		i.forceDispose(i.lifeReason())
		return false
	}

	res := i.settle(finishers, won)
	for _, p := range ids {
		_ = i.callHook(i.life, "RenderScoreboard", func(ctx context.Context) error {
			return i.hooks.RenderScoreboard(ctx, i, p, res.Board, won)
		})
	}

	exitCtx, cancelExit := context.WithCancelCause(i.life)
	defer cancelExit(nil)
	i.exitMu.Lock()
	i.exitCancel = cancelExit
	i.exitMu.Unlock()
	if i.members.Len() == 0 {
		cancelExit(lifecycle.NewReasonError(model.REmpty, "", nil))
	}
	_ = i.guardedWait(exitCtx, i.def.ExitDelay, "You will be returned to town in %d seconds.")

	if i.life.Err() != nil {
		i.forceDispose(i.lifeReason())
		return false
	}
	return true
}

func (i *Instance) settle(finishers []*membership.Member, won bool) reward.Result {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(i.life), i.settleTimeout)
	defer cancel()
	ctx, span := i.tracer.Start(ctx, "event.settle")
	defer span.End()

	res, err := i.ledger.Settle(ctx, reward.Settlement{
		Event:      i.def.Name,
		Variant:    i.def.Variant,
		Key:        i.key,
		Won:        won,
		Winner:     i.winner(won),
		Descending: i.def.RankDescending(i.hooks.RankDescending()),
		Bonus:      i.bonusFor(won),
	}, finishers)
	span.SetAttributes(telemetry.SettlementAttributes(res.GameID, len(res.Board), won)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "settlement incomplete")
		i.logger.Warn().Err(err).Str(log.FieldGameID, res.GameID).Msg("settlement incomplete")
	}
	i.result.Store(&res)
	i.logger.Info().
		Str(log.FieldGameID, res.GameID).
		Int("finishers", len(res.Board)).
		Bool("won", won).
		Msg("instance settled")
	return res
}

func (i *Instance) winner(won bool) model.PlayerID {
	wr, ok := i.hooks.(ports.WinnerReporter)
	if !won || !ok {
		return ""
	}
	return wr.Winner()
}

// bonusFor wraps the variant's bonus table. A panicking bonus hook only
// costs that player the bonus; the settlement carries on.
func (i *Instance) bonusFor(won bool) func(model.ScoreEntry) ports.Bonus {
	return func(e model.ScoreEntry) (b ports.Bonus) {
		defer func() {
			if r := recover(); r != nil {
				metrics.IncHookFailure("BonusFor")
				i.logger.Error().
					Str(log.FieldHook, "BonusFor").
					Str(log.FieldPlayer, string(e.Player)).
					Str("panic", fmt.Sprint(r)).
					Msg("variant hook panicked")
				b = ports.Bonus{}
			}
		}()
		return i.hooks.BonusFor(i, e, won)
	}
}

// guardedWait waits d on ctx and broadcasts a countdown notice GuardLead
// before the end.
func (i *Instance) guardedWait(ctx context.Context, d time.Duration, notice string) error {
	lead := i.def.GuardLead
	if lead <= 0 || d <= lead {
		return lifecycle.Wait(ctx, d)
	}
	if err := lifecycle.Wait(ctx, d-lead); err != nil {
		return err
	}
	secs := int(lead / time.Second)
	i.Broadcast(ctx, ports.Message{
		Kind:   ports.MsgCountdown,
		Text:   fmt.Sprintf(notice, secs),
		Fields: map[string]any{"seconds": secs, "phase": i.Phase().String()},
	})
	return lifecycle.Wait(ctx, lead)
}

// advance applies one lifecycle event. Once the instance is disposed every
// further event is dropped.
func (i *Instance) advance(ev lifecycle.Event, timed time.Duration) (lifecycle.Transition, bool) {
	i.transMu.Lock()
	defer i.transMu.Unlock()

	from := i.Phase()
	if from.IsTerminal() {
		return lifecycle.Transition{}, false
	}
	tr, err := lifecycle.Dispatch(from, ev)
	if err != nil {
		i.logger.Error().Err(err).
			Str(log.FieldPhase, from.String()).
			Str(log.FieldEvent, ev.Kind.String()).
			Msg("transition rejected")
		return tr, false
	}
	i.phase.Store(int32(tr.To))
	i.setDeadline(timed)

	i.endSpan(tr.Reason)
	if !tr.To.IsTerminal() {
		i.startSpan(tr.To)
	}
	metrics.IncPhaseTransition(tr.From.String(), tr.To.String(), reasonLabel(tr.Reason))
	i.logger.Info().
		Str(log.FieldOldPhase, tr.From.String()).
		Str(log.FieldNewPhase, tr.To.String()).
		Str(log.FieldReason, string(tr.Reason)).
		Int("members", i.members.Len()).
		Msg("phase transition")
	i.publish(model.TopicPhase, model.PhaseChanged{
		InstanceID: i.id,
		Key:        i.key,
		From:       tr.From,
		To:         tr.To,
		Reason:     tr.Reason,
		Remaining:  timed,
		At:         time.Now(),
	})
	return tr, true
}

func (i *Instance) setDeadline(d time.Duration) {
	if d <= 0 {
		i.deadline.Store(0)
		return
	}
	i.deadline.Store(time.Now().Add(d).UnixNano())
}

// startSpan and endSpan run under transMu, or before the driver starts.
func (i *Instance) startSpan(p model.Phase) {
	_, i.span = i.tracer.Start(context.WithoutCancel(i.life), "event.phase."+p.String())
	i.span.SetAttributes(telemetry.InstanceAttributes(i.id, i.def.Name, i.key.String(), string(i.def.Variant))...)
	i.span.SetAttributes(telemetry.PhaseAttributes(p.String(), "", i.members.Len())...)
}

func (i *Instance) endSpan(reason model.ReasonCode) {
	if i.span == nil {
		return
	}
	if reason != model.RNone {
		i.span.SetAttributes(attribute.String(telemetry.ReasonKey, string(reason)))
	}
	if reason == model.RHookFailure || reason == model.RStuck {
		i.span.SetAttributes(telemetry.ErrorAttributes(string(reason))...)
		i.span.SetStatus(codes.Error, string(reason))
	}
	i.span.End()
	i.span = nil
}

func (i *Instance) setEndReason(reason model.ReasonCode) {
	i.endReason.CompareAndSwap(model.RNone, reason)
}

func (i *Instance) lifeReason() model.ReasonCode {
	return lifecycle.ReasonFromCause(context.Cause(i.life))
}

func reasonLabel(r model.ReasonCode) string {
	if r == model.RNone {
		return "none"
	}
	return string(r)
}
