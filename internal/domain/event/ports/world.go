// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import (
	"context"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// World is the game world simulation as seen by the engine.
type World interface {
	// CreateMap allocates a private copy of the given map for one instance.
	CreateMap(ctx context.Context, key model.EventKey) (Map, error)

	// EnterMap places an admitted player on an instance map at the entrance.
	EnterMap(ctx context.Context, player model.PlayerID, m Map, at model.Point) error

	// EvictToSafeZone moves a player out of an event map to its safe location.
	EvictToSafeZone(ctx context.Context, player model.PlayerID) error
}

// MapListener receives object add/remove callbacks from a map.
type MapListener interface {
	ObjectAdded(obj model.Object)
	ObjectRemoved(obj model.Object)
}

// Map is one instance-owned world map.
type Map interface {
	Number() int
	Bounds() model.Area

	// Subscribe registers l and returns the matching unsubscribe func.
	Subscribe(l MapListener) (unsubscribe func())

	// SpawnNPC places a monster, NPC or objective of the given type
	// somewhere inside area.
	SpawnNPC(ctx context.Context, kind model.ObjectKind, npcType string, area model.Area) (model.Object, error)
	RemoveObject(ctx context.Context, id model.ObjectID) error
	ObjectsInRange(center model.Point, radius int) []model.Object

	// PositionOf returns the current tile of a player on this map.
	PositionOf(player model.PlayerID) (model.Point, bool)
	MovePlayer(ctx context.Context, player model.PlayerID, to model.Point) error

	IsWalkable(p model.Point) bool
	SetWalkable(area model.Area, walkable bool)

	DropItem(ctx context.Context, at model.Point, itemGroup string) (model.Object, error)

	Close() error
}
