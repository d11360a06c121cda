// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// Phase is the lifecycle stage of an event instance. The numeric order is the
// only order transitions may move in.
type Phase int32

const (
	PhaseOpen Phase = iota
	PhaseCountdown
	PhasePlaying
	PhaseWindDown
	PhaseEnded
	PhaseDisposed
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "OPEN"
	case PhaseCountdown:
		return "COUNTDOWN"
	case PhasePlaying:
		return "PLAYING"
	case PhaseWindDown:
		return "WIND_DOWN"
	case PhaseEnded:
		return "ENDED"
	case PhaseDisposed:
		return "DISPOSED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true once the instance has released its resources.
func (p Phase) IsTerminal() bool { return p == PhaseDisposed }

// AcceptsGameplay reports whether world callbacks are forwarded to hooks.
func (p Phase) AcceptsGameplay() bool { return p == PhasePlaying }

// EnterResult is the outcome of an admission attempt.
type EnterResult int

const (
	EnterSuccess EnterResult = iota
	EnterFull
	EnterNotOpen
)

func (r EnterResult) String() string {
	switch r {
	case EnterSuccess:
		return "success"
	case EnterFull:
		return "full"
	case EnterNotOpen:
		return "not_open"
	default:
		return "unknown"
	}
}
