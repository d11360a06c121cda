// SPDX-License-Identifier: MIT
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counterVec.WithLabelValues(labels...).Write(metric))
	return metric.GetCounter().GetValue()
}

func TestIncHookFailure_DefaultsEmptyHook(t *testing.T) {
	before := getCounterVecValue(t, HookFailuresTotal, "unknown")
	IncHookFailure("")
	assert.Equal(t, before+1, getCounterVecValue(t, HookFailuresTotal, "unknown"))
}

func TestIncBusDropReason_NormalizesLabels(t *testing.T) {
	before := getCounterVecValue(t, BusDroppedTotal, "unknown", "unknown")
	IncBusDropReason("", "")
	assert.Equal(t, before+1, getCounterVecValue(t, BusDroppedTotal, "unknown", "unknown"))

	before = getCounterVecValue(t, BusDroppedTotal, "event.phase", "full")
	IncBusDropReason("event.phase", "full")
	assert.Equal(t, before+1, getCounterVecValue(t, BusDroppedTotal, "event.phase", "full"))
}

func TestEventCounters(t *testing.T) {
	before := getCounterVecValue(t, AdmissionsTotal, "castle", "full")
	IncAdmission("castle", "full")
	IncAdmission("castle", "full")
	assert.Equal(t, before+2, getCounterVecValue(t, AdmissionsTotal, "castle", "full"))

	before = getCounterVecValue(t, PhaseTransitionsTotal, "open", "countdown", "R_NONE")
	IncPhaseTransition("open", "countdown", "R_NONE")
	assert.Equal(t, before+1, getCounterVecValue(t, PhaseTransitionsTotal, "open", "countdown", "R_NONE"))

	before = getCounterVecValue(t, RewardGrantsTotal, "money", "ok")
	IncRewardGrant("money", "ok")
	assert.Equal(t, before+1, getCounterVecValue(t, RewardGrantsTotal, "money", "ok"))
}
