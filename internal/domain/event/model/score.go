// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import (
	"fmt"
	"strings"
	"time"
)

// ScoreEntry is the frozen end-of-game result for one finisher.
type ScoreEntry struct {
	Player          PlayerID `json:"player"`
	Rank            int      `json:"rank"`
	Score           int64    `json:"score"`
	BonusScore      int64    `json:"bonus_score,omitempty"`
	BonusExperience int64    `json:"bonus_experience,omitempty"`
	BonusMoney      int64    `json:"bonus_money,omitempty"`
}

// RankingRow is one persisted history row. GameID is fresh per run so
// repeated runs of the same key never collide.
type RankingRow struct {
	GameID          string    `json:"game_id"`
	Event           string    `json:"event"`
	Variant         string    `json:"variant"`
	MapNumber       int       `json:"map_number"`
	Level           int       `json:"level"`
	Owner           PlayerID  `json:"owner,omitempty"`
	Player          PlayerID  `json:"player"`
	Rank            int       `json:"rank"`
	Score           int64     `json:"score"`
	BonusExperience int64     `json:"bonus_experience"`
	BonusMoney      int64     `json:"bonus_money"`
	Won             bool      `json:"won"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Key returns the event key the row was recorded for.
func (r RankingRow) Key() EventKey {
	return EventKey{MapNumber: r.MapNumber, Level: r.Level, Owner: r.Owner}
}

// RewardType selects how a reward-table entry is granted.
type RewardType string

const (
	RewardExperience RewardType = "experience"
	RewardMoney      RewardType = "money"
	RewardItem       RewardType = "item"      // inventory, ground on overflow
	RewardItemDrop   RewardType = "item_drop" // always dropped at the player
)

// Outcome filters reward entries by the instance result.
type Outcome string

const (
	OutcomeAny  Outcome = "any"
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Matches reports whether the filter applies to an instance result.
func (o Outcome) Matches(won bool) bool {
	switch o {
	case OutcomeWon:
		return won
	case OutcomeLost:
		return !won
	default:
		return true
	}
}

// RewardEntry is one configured reward line. Rank 0 matches every rank.
type RewardEntry struct {
	Type      RewardType `yaml:"type" json:"type"`
	Rank      int        `yaml:"rank" json:"rank"`
	Outcome   Outcome    `yaml:"outcome" json:"outcome"`
	Amount    int64      `yaml:"amount" json:"amount"`
	ItemGroup string     `yaml:"item_group" json:"item_group"`
}

// AppliesTo reports whether the entry applies to a finisher.
func (e RewardEntry) AppliesTo(rank int, won bool) bool {
	if e.Rank != 0 && e.Rank != rank {
		return false
	}
	return e.Outcome.Matches(won)
}

func (e RewardEntry) String() string {
	rank := "*"
	if e.Rank != 0 {
		rank = fmt.Sprint(e.Rank)
	}
	return fmt.Sprintf("%s[rank=%s,outcome=%s]", strings.ToLower(string(e.Type)), rank, e.Outcome)
}

// VariantKind names the game rules plugged into an instance.
type VariantKind string

const (
	VariantCapture VariantKind = "objective_capture"
	VariantArena   VariantKind = "survival_arena"
	VariantDefense VariantKind = "wave_defense"
)
