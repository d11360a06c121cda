// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldInstanceID    = "instance_id"
	FieldEventKey      = "event_key"
	FieldGameID        = "game_id"
	FieldPlayer        = "player"
	FieldCorrelationID = "correlation_id"

	// Engine fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldVariant   = "variant"
	FieldHook      = "hook"
	FieldWave      = "wave"
	FieldReason    = "reason"

	// State fields
	FieldPhase    = "phase"
	FieldOldPhase = "old_phase"
	FieldNewPhase = "new_phase"

	// Storage fields
	FieldBackend = "backend"
	FieldPath    = "path"
)
