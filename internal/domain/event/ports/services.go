// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import (
	"context"
	"errors"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// ErrPlayerOffline is returned by a Messenger when the client is gone.
// Callers treat it as a silent no-op.
var ErrPlayerOffline = errors.New("player offline")

// ErrInventoryFull is returned by RewardGrants.GiveItem when the item did not fit.
var ErrInventoryFull = errors.New("inventory full")

// RewardGrants applies rewards to character records. Calls stay valid for a
// player that disconnected after the finisher snapshot was taken.
type RewardGrants interface {
	AddExperience(ctx context.Context, player model.PlayerID, amount int64) error
	AddMoney(ctx context.Context, player model.PlayerID, amount int64) error
	GiveItem(ctx context.Context, player model.PlayerID, itemGroup string) error
}

// MessageKind classifies client-facing messages.
type MessageKind string

const (
	MsgCountdown    MessageKind = "countdown"
	MsgAnnouncement MessageKind = "announcement"
	MsgStatus       MessageKind = "status"
	MsgScoreboard   MessageKind = "scoreboard"
	MsgItemDropped  MessageKind = "item_dropped"
	MsgEliminated   MessageKind = "eliminated"
)

// Message is a text/status message for one client.
type Message struct {
	Kind   MessageKind
	Text   string
	Fields map[string]any
}

// Messenger delivers messages to player clients.
type Messenger interface {
	Send(ctx context.Context, player model.PlayerID, msg Message) error
}

// RankingStore persists ranking rows.
type RankingStore interface {
	SaveRankings(ctx context.Context, rows []model.RankingRow) error
	ListByGame(ctx context.Context, gameID string) ([]model.RankingRow, error)
	ListByKey(ctx context.Context, key model.EventKey, limit int) ([]model.RankingRow, error)
	Close() error
}
