// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import (
	"fmt"
	"strings"
)

// PlayerID identifies a character across the world server.
type PlayerID string

// EventKey identifies one running event instance. It is comparable and is
// used directly as a registry map key.
type EventKey struct {
	MapNumber int
	Level     int
	Owner     PlayerID // empty for shared instances
}

func (k EventKey) String() string {
	owner := string(k.Owner)
	if owner == "" {
		owner = "shared"
	}
	return fmt.Sprintf("map%d/lvl%d/%s", k.MapNumber, k.Level, owner)
}

// IsShared reports whether the instance is public.
func (k EventKey) IsShared() bool { return k.Owner == "" }

// CreationPolicy decides how many instances may exist per map/level.
type CreationPolicy string

const (
	PolicyShared       CreationPolicy = "shared"
	PolicyOnePerPlayer CreationPolicy = "one_per_player"
	PolicyOnePerParty  CreationPolicy = "one_per_party"
)

// ParseCreationPolicy normalizes a configured policy string.
func ParseCreationPolicy(s string) (CreationPolicy, error) {
	switch CreationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyShared, "":
		return PolicyShared, nil
	case PolicyOnePerPlayer:
		return PolicyOnePerPlayer, nil
	case PolicyOnePerParty:
		return PolicyOnePerParty, nil
	default:
		return "", fmt.Errorf("unknown creation policy %q", s)
	}
}

// KeyFor derives the instance key for a join request under the given policy.
// A solo player asking for a per-party instance owns it.
func KeyFor(policy CreationPolicy, mapNumber, level int, player, partyLeader PlayerID) EventKey {
	key := EventKey{MapNumber: mapNumber, Level: level}
	switch policy {
	case PolicyOnePerPlayer:
		key.Owner = player
	case PolicyOnePerParty:
		if partyLeader != "" {
			key.Owner = partyLeader
		} else {
			key.Owner = player
		}
	}
	return key
}
