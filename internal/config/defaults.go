// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/variant/arena"
	"github.com/ManuGH/eventd/internal/domain/event/variant/capture"
	"github.com/ManuGH/eventd/internal/domain/event/variant/defense"
)

const (
	DefaultStorePath       = "eventd.db"
	DefaultStatusListen    = "127.0.0.1:8089"
	DefaultStatusRateLimit = 120
	DefaultGuardLead       = 10 * time.Second
)

// Defaults returns the configuration every file and environment layer is
// merged over. It carries no event definitions.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel: "info",
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    DefaultStorePath,
			Redis:   RedisConfig{Addr: "localhost:6379", KeyPrefix: "eventd:ranking"},
		},
		Status: StatusConfig{
			Listen:    DefaultStatusListen,
			RateLimit: DefaultStatusRateLimit,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  "eventd",
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
		Engine: EngineConfig{
			SweepInterval:   30 * time.Second,
			StuckGrace:      2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			PublishTimeout:  250 * time.Millisecond,
			BusBuffer:       256,
		},
	}
}

// Example returns Defaults plus one definition per variant. It is what
// `eventd config init` writes.
func Example() AppConfig {
	cfg := Defaults()
	cfg.Events = []EventDefinition{
		{
			Name:         "blood_castle",
			Variant:      model.VariantCapture,
			MapNumber:    11,
			Levels:       7,
			Policy:       model.PolicyShared,
			Capacity:     10,
			OpenWindow:   5 * time.Minute,
			Countdown:    time.Minute,
			PlayDuration: 15 * time.Minute,
			ExitDelay:    time.Minute,
			GuardLead:    DefaultGuardLead,
			Entrance:     &model.Point{X: 14, Y: 15},
			Bounds:       &model.Area{X1: 0, Y1: 0, X2: 100, Y2: 100},
			Waves: []model.SpawnWave{
				{
					Number:       1,
					Start:        0,
					End:          5 * time.Minute,
					Description:  "bridge guards",
					Announcement: "Guards gather at the bridge.",
					Spawns:       []model.MonsterSpawn{{Type: "castle_guard", Count: 20, Area: model.Area{X1: 10, Y1: 20, X2: 30, Y2: 40}}},
				},
			},
			Rewards: []model.RewardEntry{
				{Type: model.RewardExperience, Rank: 1, Outcome: model.OutcomeWon, Amount: 50000},
				{Type: model.RewardItem, Rank: 1, Outcome: model.OutcomeWon, ItemGroup: "jewel_of_chaos"},
			},
			Capture: &capture.Config{
				Gate:          capture.Objective{Type: "castle_gate", Area: model.Area{X1: 13, Y1: 48, X2: 15, Y2: 50}},
				GateBlock:     model.Area{X1: 10, Y1: 47, X2: 18, Y2: 52},
				Statue:        capture.Objective{Type: "crystal_statue", Area: model.Area{X1: 13, Y1: 80, X2: 15, Y2: 82}},
				Archangel:     capture.Objective{Type: "archangel", Area: model.Area{X1: 13, Y1: 90, X2: 13, Y2: 90}},
				QuestItem:     "archangel_weapon",
				Scores:        capture.Scores{Kill: 2, Gate: 50, Statue: 100, Return: 200, FailPenalty: 300},
				WinExperience: 10000,
				WinMoney:      20000,
			},
		},
		{
			Name:         "chaos_castle",
			Variant:      model.VariantArena,
			MapNumber:    18,
			Levels:       6,
			Policy:       model.PolicyShared,
			Capacity:     70,
			OpenWindow:   5 * time.Minute,
			Countdown:    30 * time.Second,
			PlayDuration: 10 * time.Minute,
			ExitDelay:    30 * time.Second,
			GuardLead:    DefaultGuardLead,
			Entrance:     &model.Point{X: 30, Y: 30},
			Bounds:       &model.Area{X1: 20, Y1: 20, X2: 40, Y2: 40},
			Rewards: []model.RewardEntry{
				{Type: model.RewardItemDrop, Rank: 1, Outcome: model.OutcomeWon, ItemGroup: "chaos_castle_box"},
			},
			Arena: &arena.Config{
				Monsters: model.MonsterSpawn{Type: "chaos_warrior", Count: 30, Area: model.Area{X1: 22, Y1: 22, X2: 38, Y2: 38}},
				Explosion: arena.Explosion{
					Chance: 0.5,
					Bands: []arena.Band{
						{MaxDistance: 1, Push: 3},
						{MaxDistance: 2, Push: 2},
						{MaxDistance: 3, Push: 1},
					},
				},
				Traps: []arena.TrapStage{
					{Threshold: 40, Blocked: []model.Area{{X1: 20, Y1: 20, X2: 40, Y2: 21}, {X1: 20, Y1: 39, X2: 40, Y2: 40}}, Announcement: "The outer ring collapses."},
					{Threshold: 20, Blocked: []model.Area{{X1: 20, Y1: 20, X2: 21, Y2: 40}, {X1: 39, Y1: 20, X2: 40, Y2: 40}}, Announcement: "The walls close in."},
					{Threshold: 10, Blocked: []model.Area{{X1: 22, Y1: 22, X2: 38, Y2: 23}, {X1: 22, Y1: 37, X2: 38, Y2: 38}}, Announcement: "Only the centre remains."},
				},
				KillScore:          1,
				WinScore:           10,
				WinExperience:      20000,
				WinMoney:           50000,
				SurvivorExperience: 2000,
			},
		},
		{
			Name:         "devil_square",
			Variant:      model.VariantDefense,
			MapNumber:    9,
			Levels:       7,
			Policy:       model.PolicyOnePerParty,
			Capacity:     15,
			OpenWindow:   5 * time.Minute,
			Countdown:    time.Minute,
			PlayDuration: 20 * time.Minute,
			ExitDelay:    time.Minute,
			GuardLead:    DefaultGuardLead,
			Entrance:     &model.Point{X: 120, Y: 90},
			Waves: []model.SpawnWave{
				{Number: 1, Start: 0, End: 7 * time.Minute, Description: "first wave", Spawns: []model.MonsterSpawn{{Type: "devil_imp", Count: 40, Area: model.Area{X1: 100, Y1: 70, X2: 140, Y2: 110}}}},
				{Number: 2, Start: 7 * time.Minute, End: 14 * time.Minute, Description: "second wave", Announcement: "The square trembles.", Spawns: []model.MonsterSpawn{{Type: "devil_knight", Count: 30, Area: model.Area{X1: 100, Y1: 70, X2: 140, Y2: 110}}}},
				{Number: 3, Start: 14 * time.Minute, End: 20 * time.Minute, Description: "final wave", Announcement: "The lord of the square arrives.", Spawns: []model.MonsterSpawn{{Type: "devil_lord", Count: 5, Area: model.Area{X1: 110, Y1: 80, X2: 130, Y2: 100}}}},
			},
			Rewards: []model.RewardEntry{
				{Type: model.RewardItem, Rank: 1, Outcome: model.OutcomeAny, ItemGroup: "devil_square_ticket"},
			},
			Defense: &defense.Config{
				KillScore:          1,
				ExperiencePerPoint: 50,
				MoneyByRank:        []int64{30000, 20000, 10000},
			},
		},
	}
	return cfg
}
