// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build !debug

package lifecycle

import (
	"fmt"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

func illegalTransition(from model.Phase, ev EventKind, why string) (Transition, error) {
	return Transition{From: from, To: from, Event: ev}, fmt.Errorf("%w: %s + %s (%s)", ErrIllegalTransition, from, ev, why)
}
