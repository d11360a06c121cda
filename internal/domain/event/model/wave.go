// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import "time"

// SpawnWave is a timed sub-interval of the Playing phase. Offsets are
// measured from the start of Playing; the wave is active in [Start, End).
type SpawnWave struct {
	Number       int            `yaml:"number" json:"number"`
	Start        time.Duration  `yaml:"start" json:"start"`
	End          time.Duration  `yaml:"end" json:"end"`
	Description  string         `yaml:"description" json:"description"`
	Announcement string         `yaml:"announcement" json:"announcement"` // broadcast on activation
	Spawns       []MonsterSpawn `yaml:"spawns" json:"spawns"`
}

// MonsterSpawn asks for Count monsters of Type somewhere inside Area.
type MonsterSpawn struct {
	Type  string `yaml:"type" json:"type"`
	Count int    `yaml:"count" json:"count"`
	Area  Area   `yaml:"area" json:"area"`
}

// ActiveAt reports whether the wave covers the given offset.
func (w SpawnWave) ActiveAt(offset time.Duration) bool {
	return offset >= w.Start && offset < w.End
}
