// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package reward ranks finishers and distributes end-of-game rewards.
package reward

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/eventd/internal/domain/event/membership"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/log"
	"github.com/ManuGH/eventd/internal/metrics"
)

// ErrUnsupportedRewardType marks a reward table entry the ledger cannot grant.
var ErrUnsupportedRewardType = errors.New("unsupported reward type")

// Validate checks a reward table. It must pass before an instance is created.
func Validate(table []model.RewardEntry) error {
	for i, e := range table {
		switch e.Type {
		case model.RewardExperience, model.RewardMoney:
			if e.Amount <= 0 {
				return fmt.Errorf("reward %d (%s): amount must be positive", i, e)
			}
		case model.RewardItem, model.RewardItemDrop:
			if e.ItemGroup == "" {
				return fmt.Errorf("reward %d (%s): item_group required", i, e)
			}
		default:
			return fmt.Errorf("reward %d: %w: %q", i, ErrUnsupportedRewardType, e.Type)
		}
		if e.Rank < 0 {
			return fmt.Errorf("reward %d (%s): negative rank", i, e)
		}
		switch e.Outcome {
		case "", model.OutcomeAny, model.OutcomeWon, model.OutcomeLost:
		default:
			return fmt.Errorf("reward %d (%s): unknown outcome %q", i, e, e.Outcome)
		}
	}
	return nil
}

// Rank sorts finishers by score in the given direction and assigns ranks
// 1..N. A non-empty winner takes rank 1 whatever its score. Equal scores
// keep admission order. The returned board is in rank order. Ranks are
// written to the members exactly once.
func Rank(finishers []*membership.Member, descending bool, winner model.PlayerID) []model.ScoreEntry {
	sorted := make([]*membership.Member, len(finishers))
	copy(sorted, finishers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if winner != "" && sorted[i].ID != sorted[j].ID {
			if sorted[i].ID == winner {
				return true
			}
			if sorted[j].ID == winner {
				return false
			}
		}
		a, b := sorted[i].Score(), sorted[j].Score()
		if a != b {
			if descending {
				return a > b
			}
			return a < b
		}
		return sorted[i].Seq() < sorted[j].Seq()
	})

	board := make([]model.ScoreEntry, len(sorted))
	for i, m := range sorted {
		m.SetRank(i + 1)
		board[i] = model.ScoreEntry{Player: m.ID, Rank: i + 1, Score: m.Score()}
	}
	return board
}

// Deps are the collaborators a ledger grants through.
type Deps struct {
	Grants    ports.RewardGrants
	Messenger ports.Messenger
	Store     ports.RankingStore
	Map       ports.Map
}

// Settlement identifies the run being settled.
type Settlement struct {
	Event      string
	Variant    model.VariantKind
	Key        model.EventKey
	Won        bool
	Winner     model.PlayerID // ranked first when set
	Descending bool
	Bonus      func(entry model.ScoreEntry) ports.Bonus
}

// Result is the frozen outcome of one settlement.
type Result struct {
	GameID string
	Board  []model.ScoreEntry
	Rows   []model.RankingRow
}

// Ledger settles one instance. It is created per instance with the reward
// table of the definition the instance was built from.
type Ledger struct {
	deps  Deps
	table []model.RewardEntry
	now   func() time.Time
	newID func() string
}

// New validates table and returns a ledger for it.
func New(deps Deps, table []model.RewardEntry) (*Ledger, error) {
	if err := Validate(table); err != nil {
		return nil, err
	}
	cp := make([]model.RewardEntry, len(table))
	copy(cp, table)
	return &Ledger{
		deps:  deps,
		table: cp,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}, nil
}

// Settle ranks the finishers, applies bonuses and the reward table, and
// persists one ranking row per finisher. Grant failures for one player do
// not stop the others; they are joined into the returned error.
func (l *Ledger) Settle(ctx context.Context, s Settlement, finishers []*membership.Member) (Result, error) {
	board := Rank(finishers, s.Descending, s.Winner)
	res := Result{GameID: l.newID(), Board: board}
	logger := log.WithComponent("reward").With().
		Str(log.FieldGameID, res.GameID).
		Str(log.FieldEventKey, s.Key.String()).
		Logger()

	var errs []error
	for i := range board {
		entry := &board[i]
		if s.Bonus != nil {
			b := s.Bonus(*entry)
			entry.BonusScore = b.Score
			entry.BonusExperience = b.Experience
			entry.BonusMoney = b.Money
		}
		if err := l.grantBonus(ctx, *entry); err != nil {
			errs = append(errs, err)
		}
		for _, r := range l.table {
			if !r.AppliesTo(entry.Rank, s.Won) {
				continue
			}
			if err := l.grant(ctx, entry.Player, r); err != nil {
				errs = append(errs, err)
			}
		}
	}

	finishedAt := l.now().UTC()
	res.Rows = make([]model.RankingRow, 0, len(board))
	for _, e := range board {
		res.Rows = append(res.Rows, model.RankingRow{
			GameID:          res.GameID,
			Event:           s.Event,
			Variant:         string(s.Variant),
			MapNumber:       s.Key.MapNumber,
			Level:           s.Key.Level,
			Owner:           s.Key.Owner,
			Player:          e.Player,
			Rank:            e.Rank,
			Score:           e.Score + e.BonusScore,
			BonusExperience: e.BonusExperience,
			BonusMoney:      e.BonusMoney,
			Won:             s.Won,
			FinishedAt:      finishedAt,
		})
	}
	if l.deps.Store != nil && len(res.Rows) > 0 {
		if err := l.deps.Store.SaveRankings(ctx, res.Rows); err != nil {
			errs = append(errs, fmt.Errorf("save rankings: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Warn().Err(err).Int("finishers", len(board)).Msg("settlement completed with errors")
	} else {
		logger.Debug().Int("finishers", len(board)).Bool("won", s.Won).Msg("settlement completed")
	}
	return res, err
}

func (l *Ledger) grantBonus(ctx context.Context, e model.ScoreEntry) error {
	var errs []error
	if e.BonusExperience > 0 {
		errs = append(errs, l.record(model.RewardExperience, l.deps.Grants.AddExperience(ctx, e.Player, e.BonusExperience)))
	}
	if e.BonusMoney > 0 {
		errs = append(errs, l.record(model.RewardMoney, l.deps.Grants.AddMoney(ctx, e.Player, e.BonusMoney)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("bonus for %s: %w", e.Player, err)
	}
	return nil
}

func (l *Ledger) grant(ctx context.Context, player model.PlayerID, r model.RewardEntry) error {
	var err error
	switch r.Type {
	case model.RewardExperience:
		err = l.deps.Grants.AddExperience(ctx, player, r.Amount)
	case model.RewardMoney:
		err = l.deps.Grants.AddMoney(ctx, player, r.Amount)
	case model.RewardItem:
		err = l.deps.Grants.GiveItem(ctx, player, r.ItemGroup)
		if errors.Is(err, ports.ErrInventoryFull) {
			err = l.dropAt(ctx, player, r.ItemGroup)
		}
	case model.RewardItemDrop:
		err = l.dropAt(ctx, player, r.ItemGroup)
	default:
		// Validate rejects these; reaching here means the table was bypassed.
		return fmt.Errorf("%w: %q", ErrUnsupportedRewardType, r.Type)
	}
	if err = l.record(r.Type, err); err != nil {
		return fmt.Errorf("%s for %s: %w", r, player, err)
	}
	return nil
}

func (l *Ledger) dropAt(ctx context.Context, player model.PlayerID, itemGroup string) error {
	if l.deps.Map == nil {
		return errors.New("no map to drop item on")
	}
	pos, ok := l.deps.Map.PositionOf(player)
	if !ok {
		pos = l.deps.Map.Bounds().Center()
	}
	item, err := l.deps.Map.DropItem(ctx, pos, itemGroup)
	if err != nil {
		return fmt.Errorf("drop item: %w", err)
	}
	if l.deps.Messenger != nil {
		// offline clients are fine, the item is on the ground either way
		_ = l.deps.Messenger.Send(ctx, player, ports.Message{
			Kind: ports.MsgItemDropped,
			Text: "Your reward was dropped on the ground.",
			Fields: map[string]any{
				"item_group": itemGroup,
				"object_id":  uint32(item.ID),
				"x":          item.Position.X,
				"y":          item.Position.Y,
			},
		})
	}
	return nil
}

func (l *Ledger) record(t model.RewardType, err error) error {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.IncRewardGrant(string(t), result)
	return err
}
