package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// BadgerStore implements RankingStore on an embedded badger database.
// Rows are written twice: under their game and under an event-key index
// whose keys sort newest run first.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens the badger directory at path. An empty path keeps
// the database in memory.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %q: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func gamePrefix(gameID string) []byte {
	return []byte("g/" + url.PathEscape(gameID) + "/")
}

func keyPrefix(k model.EventKey) []byte {
	return []byte(fmt.Sprintf("k/%d/%d/%s/", k.MapNumber, k.Level, url.PathEscape(string(k.Owner))))
}

func (s *BadgerStore) SaveRankings(_ context.Context, rows []model.RankingRow) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, r := range rows {
			val, err := json.Marshal(r)
			if err != nil {
				return err
			}
			gk := fmt.Sprintf("%s%06d/%s", gamePrefix(r.GameID), r.Rank, url.PathEscape(string(r.Player)))
			if err := txn.Set([]byte(gk), val); err != nil {
				return err
			}
			inverted := math.MaxInt64 - r.FinishedAt.UnixNano()
			ik := fmt.Sprintf("%s%020d/%s/%06d/%s", keyPrefix(r.Key()), inverted,
				url.PathEscape(r.GameID), r.Rank, url.PathEscape(string(r.Player)))
			if err := txn.Set([]byte(ik), val); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) ListByGame(_ context.Context, gameID string) ([]model.RankingRow, error) {
	return s.scan(gamePrefix(gameID), 0)
}

func (s *BadgerStore) ListByKey(_ context.Context, key model.EventKey, limit int) ([]model.RankingRow, error) {
	return s.scan(keyPrefix(key), clampLimit(limit))
}

func (s *BadgerStore) scan(prefix []byte, limit int) ([]model.RankingRow, error) {
	var out []model.RankingRow
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r model.RankingRow
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &r)
			}); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}
