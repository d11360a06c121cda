// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import "errors"

// Configuration errors. CreateOrJoin returns them without creating an
// instance.
var (
	ErrUnknownEvent    = errors.New("unknown event")
	ErrMissingEntrance = errors.New("event has no entrance")
	ErrInvalidLevel    = errors.New("level out of range")
)

var (
	ErrShuttingDown     = errors.New("engine shutting down")
	ErrInstanceNotFound = errors.New("instance not found")
	ErrNotMember        = errors.New("player is not a member")
)
