// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import (
	"context"
	"errors"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// Dispatch resolves the next transition from the decision and transition
// tables. It never mutates anything; the caller applies the result.
func Dispatch(from model.Phase, ev Event) (Transition, error) {
	decision, ok := DecisionFor(from, ev.Kind)
	if !ok || !decision.Allowed {
		return illegalTransition(from, ev.Kind, decision.Reason)
	}
	tr, ok := TransitionFor(from, ev.Kind)
	if !ok {
		return illegalTransition(from, ev.Kind, "no_edge")
	}
	if ev.Reason != model.RNone {
		tr.Reason = ev.Reason
	}
	return tr, nil
}

// ReasonFromCause maps a play-scope cancellation cause to a reason code.
// A nil or plain context error means the nominal timer elapsed.
func ReasonFromCause(cause error) model.ReasonCode {
	if cause == nil || errors.Is(cause, context.DeadlineExceeded) {
		return model.RTimeout
	}
	if reason, ok := ReasonFromError(cause); ok {
		return reason
	}
	if errors.Is(cause, context.Canceled) {
		return model.RForced
	}
	return model.RHookFailure
}
