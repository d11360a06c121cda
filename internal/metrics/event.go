// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus collectors for the event engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No instance ids or player ids in labels.

var (
	AdmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventd_admissions_total",
		Help: "Total number of admission attempts, by event and result.",
	}, []string{"event", "result"})

	PhaseTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventd_phase_transitions_total",
		Help: "Total number of instance phase transitions, by from/to phase and reason.",
	}, []string{"from", "to", "reason"})

	ActiveInstances = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "eventd_active_instances",
		Help: "Current number of live (not disposed) instances, by variant.",
	}, []string{"variant"})

	WaveActivationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventd_wave_activations_total",
		Help: "Total number of spawn wave activations, by variant.",
	}, []string{"variant"})

	HookFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventd_hook_failures_total",
		Help: "Total number of variant hook failures (error or panic), by hook.",
	}, []string{"hook"})

	RewardGrantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventd_reward_grants_total",
		Help: "Total number of reward grants, by type and result.",
	}, []string{"type", "result"})

	SweeperActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventd_sweeper_actions_total",
		Help: "Total number of sweeper actions, by action.",
	}, []string{"action"})

	InstanceDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventd_instance_duration_seconds",
		Help:    "Wall time from instance creation to disposal, by variant and final reason.",
		Buckets: []float64{1, 5, 30, 60, 300, 600, 900, 1800, 3600},
	}, []string{"variant", "reason"})

	ConfigReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventd_config_reloads_total",
		Help: "Total number of configuration reload attempts, by result.",
	}, []string{"result"})
)

func IncAdmission(event, result string) {
	AdmissionsTotal.WithLabelValues(event, result).Inc()
}

func IncPhaseTransition(from, to, reason string) {
	PhaseTransitionsTotal.WithLabelValues(from, to, reason).Inc()
}

func IncWaveActivation(variant string) {
	WaveActivationsTotal.WithLabelValues(variant).Inc()
}

func IncHookFailure(hook string) {
	if hook == "" {
		hook = "unknown"
	}
	HookFailuresTotal.WithLabelValues(hook).Inc()
}

func IncRewardGrant(rewardType, result string) {
	RewardGrantsTotal.WithLabelValues(rewardType, result).Inc()
}

func IncSweeperAction(action string) {
	SweeperActionsTotal.WithLabelValues(action).Inc()
}

func ObserveInstanceDuration(variant, reason string, seconds float64) {
	InstanceDurationSeconds.WithLabelValues(variant, reason).Observe(seconds)
}

func IncConfigReload(result string) {
	ConfigReloadsTotal.WithLabelValues(result).Inc()
}
