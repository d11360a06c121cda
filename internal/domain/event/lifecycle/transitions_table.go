// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import "github.com/ManuGH/eventd/internal/domain/event/model"

type transitionKey struct {
	from model.Phase
	ev   EventKind
}

var transitionTable = map[transitionKey]Transition{
	{model.PhaseOpen, EvWindowElapsed}:         {From: model.PhaseOpen, To: model.PhaseCountdown, Event: EvWindowElapsed},
	{model.PhaseOpen, EvAbandoned}:             {From: model.PhaseOpen, To: model.PhaseDisposed, Event: EvAbandoned, Reason: model.RAbandoned},
	{model.PhaseCountdown, EvCountdownElapsed}: {From: model.PhaseCountdown, To: model.PhasePlaying, Event: EvCountdownElapsed},
	{model.PhaseCountdown, EvAborted}:          {From: model.PhaseCountdown, To: model.PhaseEnded, Event: EvAborted, Reason: model.REmpty},
	{model.PhasePlaying, EvGameOver}:           {From: model.PhasePlaying, To: model.PhaseWindDown, Event: EvGameOver, Reason: model.RTimeout},
	{model.PhaseWindDown, EvExitElapsed}:       {From: model.PhaseWindDown, To: model.PhaseEnded, Event: EvExitElapsed},
	{model.PhaseEnded, EvDispose}:              {From: model.PhaseEnded, To: model.PhaseDisposed, Event: EvDispose},

	{model.PhaseOpen, EvForceShutdown}:      {From: model.PhaseOpen, To: model.PhaseDisposed, Event: EvForceShutdown, Reason: model.RForced},
	{model.PhaseCountdown, EvForceShutdown}: {From: model.PhaseCountdown, To: model.PhaseDisposed, Event: EvForceShutdown, Reason: model.RForced},
	{model.PhasePlaying, EvForceShutdown}:   {From: model.PhasePlaying, To: model.PhaseDisposed, Event: EvForceShutdown, Reason: model.RForced},
	{model.PhaseWindDown, EvForceShutdown}:  {From: model.PhaseWindDown, To: model.PhaseDisposed, Event: EvForceShutdown, Reason: model.RForced},
	{model.PhaseEnded, EvForceShutdown}:     {From: model.PhaseEnded, To: model.PhaseDisposed, Event: EvForceShutdown, Reason: model.RForced},
}

// TransitionFor returns the target edge for from×ev, if one exists.
func TransitionFor(from model.Phase, ev EventKind) (Transition, bool) {
	tr, ok := transitionTable[transitionKey{from, ev}]
	return tr, ok
}
