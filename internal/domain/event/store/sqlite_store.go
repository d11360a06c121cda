// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/persistence/sqlite"
)

const schemaVersion = 1

// SqliteStore implements RankingStore using SQLite.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore opens (and migrates) the ranking database at dbPath.
func NewSqliteStore(ctx context.Context, dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(ctx, dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{DB: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ranking store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

func (s *SqliteStore) migrate(ctx context.Context) error {
	current, err := sqlite.UserVersion(ctx, s.DB)
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS rankings (
		game_id TEXT NOT NULL,
		event TEXT NOT NULL,
		variant TEXT NOT NULL,
		map_number INTEGER NOT NULL,
		level INTEGER NOT NULL,
		owner TEXT NOT NULL,
		player TEXT NOT NULL,
		rank INTEGER NOT NULL,
		score INTEGER NOT NULL,
		bonus_experience INTEGER NOT NULL,
		bonus_money INTEGER NOT NULL,
		won INTEGER NOT NULL,
		finished_at_ms INTEGER NOT NULL,
		PRIMARY KEY (game_id, player)
	);

	CREATE INDEX IF NOT EXISTS idx_rankings_key ON rankings(map_number, level, owner, finished_at_ms DESC);
	`
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveRankings writes all rows of one run in a single transaction.
func (s *SqliteStore) SaveRankings(ctx context.Context, rows []model.RankingRow) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rankings (
			game_id, event, variant, map_number, level, owner, player,
			rank, score, bonus_experience, bonus_money, won, finished_at_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, player) DO UPDATE SET
			rank=excluded.rank,
			score=excluded.score,
			bonus_experience=excluded.bonus_experience,
			bonus_money=excluded.bonus_money,
			won=excluded.won,
			finished_at_ms=excluded.finished_at_ms`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		won := 0
		if r.Won {
			won = 1
		}
		if _, err := stmt.ExecContext(ctx,
			r.GameID, r.Event, r.Variant, r.MapNumber, r.Level, string(r.Owner), string(r.Player),
			r.Rank, r.Score, r.BonusExperience, r.BonusMoney, won, r.FinishedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert ranking %s/%s: %w", r.GameID, r.Player, err)
		}
	}
	return tx.Commit()
}

const selectColumns = `game_id, event, variant, map_number, level, owner, player,
	rank, score, bonus_experience, bonus_money, won, finished_at_ms`

func (s *SqliteStore) ListByGame(ctx context.Context, gameID string) ([]model.RankingRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM rankings WHERE game_id = ? ORDER BY rank ASC`, gameID)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (s *SqliteStore) ListByKey(ctx context.Context, key model.EventKey, limit int) ([]model.RankingRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM rankings
		 WHERE map_number = ? AND level = ? AND owner = ?
		 ORDER BY finished_at_ms DESC, game_id ASC, rank ASC
		 LIMIT ?`,
		key.MapNumber, key.Level, string(key.Owner), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]model.RankingRow, error) {
	defer rows.Close()
	var out []model.RankingRow
	for rows.Next() {
		var (
			r             model.RankingRow
			owner, player string
			won           int
			finishedMs    int64
		)
		if err := rows.Scan(&r.GameID, &r.Event, &r.Variant, &r.MapNumber, &r.Level, &owner, &player,
			&r.Rank, &r.Score, &r.BonusExperience, &r.BonusMoney, &won, &finishedMs); err != nil {
			return nil, err
		}
		r.Owner = model.PlayerID(owner)
		r.Player = model.PlayerID(player)
		r.Won = won == 1
		r.FinishedAt = time.UnixMilli(finishedMs).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
