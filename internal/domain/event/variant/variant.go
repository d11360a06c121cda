// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package variant builds the rule set of an event from its definition.
package variant

import (
	"errors"
	"fmt"

	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/domain/event/variant/arena"
	"github.com/ManuGH/eventd/internal/domain/event/variant/capture"
	"github.com/ManuGH/eventd/internal/domain/event/variant/defense"
)

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrMissingBlock   = errors.New("variant block missing")
)

// Factory builds fresh hooks for one instance.
type Factory func(def config.EventDefinition) (ports.VariantHooks, error)

// New is the default Factory. Every call returns a new value; variants keep
// per-instance state.
func New(def config.EventDefinition) (ports.VariantHooks, error) {
	switch def.Variant {
	case model.VariantCapture:
		if def.Capture == nil {
			return nil, fmt.Errorf("%w: %s needs a capture block", ErrMissingBlock, def.Name)
		}
		return capture.New(*def.Capture), nil
	case model.VariantArena:
		if def.Arena == nil {
			return nil, fmt.Errorf("%w: %s needs an arena block", ErrMissingBlock, def.Name)
		}
		return arena.New(*def.Arena), nil
	case model.VariantDefense:
		if def.Defense == nil {
			return nil, fmt.Errorf("%w: %s needs a defense block", ErrMissingBlock, def.Name)
		}
		return defense.New(*def.Defense), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, def.Variant)
	}
}

var (
	_ ports.VariantHooks = (*capture.Variant)(nil)
	_ ports.VariantHooks = (*arena.Variant)(nil)
	_ ports.VariantHooks = (*defense.Variant)(nil)
)
