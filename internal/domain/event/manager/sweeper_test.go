package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

func TestSweep_LeavesHealthyInstances(t *testing.T) {
	h := newHarness(t, withHooks(newScripted()), slowDefinition("castle"))
	inst := h.join(t, "castle", "p1")

	rep := h.engine.Sweep(time.Now())
	assert.Equal(t, SweepReport{}, rep)
	assert.Equal(t, model.PhaseOpen, inst.Phase())
}

func TestSweep_TerminatesStuckInstance(t *testing.T) {
	h := newHarness(t, Options{
		Variants:   withHooks(newScripted()).Variants,
		StuckGrace: time.Minute,
	}, slowDefinition("castle"))
	inst := h.join(t, "castle", "p1")

	late := time.Now().Add(4*time.Hour + 2*time.Minute)
	rep := h.engine.Sweep(late)
	assert.Equal(t, 1, rep.Forced)

	waitDone(t, inst)
	assert.Equal(t, model.PhaseDisposed, inst.Phase())
	assert.Equal(t, model.RStuck, inst.EndReason())
	assert.Equal(t, 1, h.world.Evictions("p1"))

	rep = h.engine.Sweep(late)
	assert.Equal(t, SweepReport{}, rep, "disposed instances are already gone from the registry")
	assert.Empty(t, h.engine.Instances())
}
