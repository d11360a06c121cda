// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"errors"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/lifecycle"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
)

var errDisposed = errors.New("instance disposed")

// Dispose force-releases the instance from any phase. It is idempotent and
// safe to call concurrently with the driver.
func (i *Instance) Dispose(reason model.ReasonCode) {
	if reason == model.RNone {
		reason = model.RForced
	}
	i.forceDispose(reason)
}

func (i *Instance) forceDispose(reason model.ReasonCode) {
	i.setEndReason(reason)
	i.dispose(lifecycle.Event{Kind: lifecycle.EvForceShutdown, Reason: reason})
}

// dispose releases every resource exactly once and then moves to Disposed.
// Members still present are sent to the safe zone.
func (i *Instance) dispose(ev lifecycle.Event) {
	i.disposeOnce.Do(func() {
		if ev.Kind == lifecycle.EvAbandoned {
			i.setEndReason(model.RAbandoned)
		}
		i.lifeCancel(lifecycle.NewReasonError(model.RForced, "disposed", errDisposed))
		i.unsubscribe()
		i.waves.Clear()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		evicted := 0
		for _, m := range i.members.Drain() {
			if m.MarkEvicted() {
				if err := i.deps.World.EvictToSafeZone(ctx, m.ID); err != nil {
					i.logger.Warn().Err(err).Str(log.FieldPlayer, string(m.ID)).Msg("evict on dispose")
				}
				evicted++
			}
			i.publishMembership(m.ID, false)
		}
		if err := i.m.Close(); err != nil {
			i.logger.Warn().Err(err).Msg("close instance map")
		}

		i.advance(ev, 0)
		reason := i.EndReason()
		metrics.ObserveInstanceDuration(string(i.def.Variant), reasonLabel(reason), time.Since(i.createdAt).Seconds())
		i.logger.Info().
			Str(log.FieldReason, string(reason)).
			Int("evicted", evicted).
			Dur("lifetime", time.Since(i.createdAt)).
			Msg("instance disposed")
		if i.onDisposed != nil {
			i.onDisposed(i)
		}
	})
}
