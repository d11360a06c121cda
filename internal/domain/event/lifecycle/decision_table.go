// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import "github.com/ManuGH/eventd/internal/domain/event/model"

const (
	ForbiddenTerminalAbsorbing = "terminal_absorbing"
	ForbiddenOutOfOrder        = "out_of_order"
	ForbiddenBackwards         = "backwards"
	ForbiddenRequiresMembers   = "requires_members"
	ForbiddenRequiresPlay      = "requires_play"
)

// Decision is the explicit verdict for a phase×event pair.
type Decision struct {
	Allowed bool
	Reason  string
}

func allowed() Decision        { return Decision{Allowed: true} }
func forbid(r string) Decision { return Decision{Allowed: false, Reason: r} }

// decisionTable defines an explicit decision for every Phase×Event combination.
var decisionTable = map[model.Phase]map[EventKind]Decision{
	model.PhaseOpen: {
		EvWindowElapsed:    allowed(),
		EvAbandoned:        allowed(),
		EvCountdownElapsed: forbid(ForbiddenOutOfOrder),
		EvAborted:          forbid(ForbiddenOutOfOrder),
		EvGameOver:         forbid(ForbiddenRequiresPlay),
		EvExitElapsed:      forbid(ForbiddenOutOfOrder),
		EvDispose:          forbid(ForbiddenOutOfOrder),
		EvForceShutdown:    allowed(),
	},
	model.PhaseCountdown: {
		EvWindowElapsed:    forbid(ForbiddenBackwards),
		EvAbandoned:        forbid(ForbiddenBackwards),
		EvCountdownElapsed: allowed(),
		EvAborted:          allowed(),
		EvGameOver:         forbid(ForbiddenRequiresPlay),
		EvExitElapsed:      forbid(ForbiddenOutOfOrder),
		EvDispose:          forbid(ForbiddenOutOfOrder),
		EvForceShutdown:    allowed(),
	},
	model.PhasePlaying: {
		EvWindowElapsed:    forbid(ForbiddenBackwards),
		EvAbandoned:        forbid(ForbiddenBackwards),
		EvCountdownElapsed: forbid(ForbiddenBackwards),
		EvAborted:          forbid(ForbiddenOutOfOrder),
		EvGameOver:         allowed(),
		EvExitElapsed:      forbid(ForbiddenOutOfOrder),
		EvDispose:          forbid(ForbiddenOutOfOrder),
		EvForceShutdown:    allowed(),
	},
	model.PhaseWindDown: {
		EvWindowElapsed:    forbid(ForbiddenBackwards),
		EvAbandoned:        forbid(ForbiddenBackwards),
		EvCountdownElapsed: forbid(ForbiddenBackwards),
		EvAborted:          forbid(ForbiddenBackwards),
		EvGameOver:         forbid(ForbiddenBackwards),
		EvExitElapsed:      allowed(),
		EvDispose:          forbid(ForbiddenOutOfOrder),
		EvForceShutdown:    allowed(),
	},
	model.PhaseEnded: {
		EvWindowElapsed:    forbid(ForbiddenBackwards),
		EvAbandoned:        forbid(ForbiddenBackwards),
		EvCountdownElapsed: forbid(ForbiddenBackwards),
		EvAborted:          forbid(ForbiddenBackwards),
		EvGameOver:         forbid(ForbiddenBackwards),
		EvExitElapsed:      forbid(ForbiddenBackwards),
		EvDispose:          allowed(),
		EvForceShutdown:    allowed(),
	},
	model.PhaseDisposed: {
		EvWindowElapsed:    forbid(ForbiddenTerminalAbsorbing),
		EvAbandoned:        forbid(ForbiddenTerminalAbsorbing),
		EvCountdownElapsed: forbid(ForbiddenTerminalAbsorbing),
		EvAborted:          forbid(ForbiddenTerminalAbsorbing),
		EvGameOver:         forbid(ForbiddenTerminalAbsorbing),
		EvExitElapsed:      forbid(ForbiddenTerminalAbsorbing),
		EvDispose:          forbid(ForbiddenTerminalAbsorbing),
		EvForceShutdown:    forbid(ForbiddenTerminalAbsorbing),
	},
}

// DecisionFor returns the explicit decision for phase×event.
func DecisionFor(from model.Phase, ev EventKind) (Decision, bool) {
	m, ok := decisionTable[from]
	if !ok {
		return Decision{}, false
	}
	d, ok := m[ev]
	return d, ok
}

// ForbiddenTransitionReason documents why a transition is disallowed.
func ForbiddenTransitionReason(from model.Phase, ev EventKind) string {
	decision, ok := DecisionFor(from, ev)
	if !ok || decision.Allowed {
		return ""
	}
	return decision.Reason
}
