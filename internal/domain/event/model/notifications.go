// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "time"

// Bus topics for outward notifications.
const (
	TopicPhase      = "event.phase"
	TopicWave       = "event.wave"
	TopicMembership = "event.membership"
)

// PhaseChanged is published on every lifecycle transition.
type PhaseChanged struct {
	InstanceID string
	Key        EventKey
	From       Phase
	To         Phase
	Reason     ReasonCode
	Remaining  time.Duration
	At         time.Time
}

// WaveChanged is published when a spawn wave activates or expires.
type WaveChanged struct {
	InstanceID string
	Key        EventKey
	Wave       int
	Active     bool
	At         time.Time
}

// MembershipChanged is published when a player joins or leaves an instance.
type MembershipChanged struct {
	InstanceID string
	Key        EventKey
	Player     PlayerID
	Joined     bool
	At         time.Time
}

// ReasonCode explains why an instance left a phase early or ended.
type ReasonCode string

const (
	RNone          ReasonCode = ""
	RTimeout       ReasonCode = "R_TIMEOUT"
	RWon           ReasonCode = "R_WON"
	RNoSurvivors   ReasonCode = "R_NO_SURVIVORS"
	REmpty         ReasonCode = "R_EMPTY"
	RAbandoned     ReasonCode = "R_ABANDONED"
	RForced        ReasonCode = "R_FORCED"
	RHookFailure   ReasonCode = "R_HOOK_FAILURE"
	RStuck         ReasonCode = "R_STUCK"
	RConfigInvalid ReasonCode = "R_CONFIG_INVALID"
)
