// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import (
	"errors"
	"strings"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

var (
	ErrIllegalTransition = errors.New("illegal phase transition")
	ErrGameOver          = errors.New("game over")
	ErrForcedShutdown    = errors.New("forced shutdown")
	ErrHookFailure       = errors.New("variant hook failure")
)

// ReasonErrorClass maps a reason code to its sentinel error class.
func ReasonErrorClass(reason model.ReasonCode) error {
	switch reason {
	case model.RWon, model.REmpty, model.RTimeout, model.RNoSurvivors:
		return ErrGameOver
	case model.RForced, model.RStuck, model.RAbandoned:
		return ErrForcedShutdown
	case model.RHookFailure, model.RConfigInvalid:
		return ErrHookFailure
	default:
		return nil
	}
}

type reasonError struct {
	reason model.ReasonCode
	detail string
	err    error
}

func (e *reasonError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.reason))
	if e.detail != "" {
		b.WriteString(": ")
		b.WriteString(e.detail)
	}
	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}
	return b.String()
}

func (e *reasonError) Is(target error) bool {
	if target == nil {
		return false
	}
	class := ReasonErrorClass(e.reason)
	return class != nil && target == class
}

func (e *reasonError) Unwrap() error { return e.err }

// NewReasonError builds an error that carries a reason code. It is used as the
// cancellation cause of an instance scope.
func NewReasonError(reason model.ReasonCode, detail string, err error) error {
	return &reasonError{reason: reason, detail: sanitizeDetail(detail), err: err}
}

// ReasonFromError extracts the reason code from an error chain.
func ReasonFromError(err error) (model.ReasonCode, bool) {
	var rerr *reasonError
	if errors.As(err, &rerr) {
		return rerr.reason, true
	}
	return model.RNone, false
}

func sanitizeDetail(detail string) string {
	if detail == "" {
		return ""
	}
	const maxLen = 160
	clean := strings.ReplaceAll(detail, "\n", " ")
	if len(clean) > maxLen {
		return clean[:maxLen] + "..."
	}
	return clean
}
