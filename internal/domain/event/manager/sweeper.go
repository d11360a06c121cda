package manager

import (
	"context"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
)

// SweepReport counts what one sweep did.
type SweepReport struct {
	Reaped   int
	Forced   int
	Disposed int
}

// Run sweeps the registry every SweepInterval until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	t := time.NewTicker(e.opts.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			e.Sweep(now)
		}
	}
}

// Sweep removes disposed instances and terminates instances that outlived
// their definition by more than StuckGrace. An instance that was already
// told to stop and is still alive on a later sweep is disposed directly.
func (e *Engine) Sweep(now time.Time) SweepReport {
	var rep SweepReport
	live := map[model.VariantKind]int{
		model.VariantCapture: 0,
		model.VariantArena:   0,
		model.VariantDefense: 0,
	}
	for _, inst := range e.Instances() {
		if inst.Phase().IsTerminal() {
			e.forget(inst)
			rep.Reaped++
			metrics.IncSweeperAction("reaped")
			continue
		}
		if now.Sub(inst.createdAt) <= inst.def.Lifetime()+e.opts.StuckGrace {
			live[inst.def.Variant]++
			continue
		}
		logger := e.logger.With().
			Str(log.FieldInstanceID, inst.id).
			Str(log.FieldPhase, inst.Phase().String()).
			Logger()
		if inst.life.Err() == nil {
			logger.Warn().Msg("instance outlived its schedule, terminating")
			inst.Terminate(model.RStuck, "sweeper")
			rep.Forced++
			metrics.IncSweeperAction("forced")
			live[inst.def.Variant]++
			continue
		}
		logger.Warn().Msg("terminated instance still running, disposing")
		inst.Dispose(model.RStuck)
		rep.Disposed++
		metrics.IncSweeperAction("disposed")
	}
	for v, n := range live {
		metrics.ActiveInstances.WithLabelValues(string(v)).Set(float64(n))
	}
	return rep
}
