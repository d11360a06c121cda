// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import "github.com/ManuGH/eventd/internal/domain/event/model"

// EventKind is a domain event in the instance lifecycle.
type EventKind int

const (
	EvUnknown          EventKind = iota
	EvWindowElapsed              // admission window over, members present
	EvAbandoned                  // admission window over, nobody joined
	EvCountdownElapsed           // countdown delay over
	EvAborted                    // early termination before play began
	EvGameOver                   // timeout, win or empty membership
	EvExitElapsed                // wind-down delay over (or cut short)
	EvDispose                    // resources released after Ended
	EvForceShutdown              // forced disposal from any phase
)

func (k EventKind) String() string {
	switch k {
	case EvWindowElapsed:
		return "window_elapsed"
	case EvAbandoned:
		return "abandoned"
	case EvCountdownElapsed:
		return "countdown_elapsed"
	case EvAborted:
		return "aborted"
	case EvGameOver:
		return "game_over"
	case EvExitElapsed:
		return "exit_elapsed"
	case EvDispose:
		return "dispose"
	case EvForceShutdown:
		return "force_shutdown"
	default:
		return "unknown"
	}
}

// Event carries optional domain metadata for a transition.
type Event struct {
	Kind   EventKind
	Reason model.ReasonCode
}

// Transition is an applied edge of the phase machine.
type Transition struct {
	From   model.Phase
	To     model.Phase
	Event  EventKind
	Reason model.ReasonCode
}
