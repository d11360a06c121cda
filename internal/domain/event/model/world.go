// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// Point is a tile coordinate on a map.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Distance is the tile (Chebyshev) distance between two points.
func (p Point) Distance(q Point) int {
	return max(abs(p.X-q.X), abs(p.Y-q.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Area is an inclusive rectangle of tiles.
type Area struct {
	X1 int `yaml:"x1" json:"x1"`
	Y1 int `yaml:"y1" json:"y1"`
	X2 int `yaml:"x2" json:"x2"`
	Y2 int `yaml:"y2" json:"y2"`
}

// Contains reports whether p lies inside the area.
func (a Area) Contains(p Point) bool {
	return p.X >= a.X1 && p.X <= a.X2 && p.Y >= a.Y1 && p.Y <= a.Y2
}

// Clamp moves p onto the nearest tile inside the area.
func (a Area) Clamp(p Point) Point {
	p.X = min(max(p.X, a.X1), a.X2)
	p.Y = min(max(p.Y, a.Y1), a.Y2)
	return p
}

// Empty reports whether the area has no tiles.
func (a Area) Empty() bool {
	return a.X2 < a.X1 || a.Y2 < a.Y1
}

// Center returns the middle tile of the area.
func (a Area) Center() Point {
	return Point{X: (a.X1 + a.X2) / 2, Y: (a.Y1 + a.Y2) / 2}
}

// ObjectID identifies an object on an instance map.
type ObjectID uint32

// ObjectKind classifies map objects.
type ObjectKind int

const (
	ObjectPlayer ObjectKind = iota
	ObjectMonster
	ObjectNPC
	ObjectItem
	ObjectObjective // destructible gate, statue and the like
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectPlayer:
		return "player"
	case ObjectMonster:
		return "monster"
	case ObjectNPC:
		return "npc"
	case ObjectItem:
		return "item"
	case ObjectObjective:
		return "objective"
	default:
		return "unknown"
	}
}

// Object is a read-only view of something on the map.
type Object struct {
	ID       ObjectID
	Kind     ObjectKind
	Type     string   // monster/NPC/item type name
	Player   PlayerID // set for ObjectPlayer
	Position Point
}
