package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/log"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore implements RankingStore on Redis. Each run is a list of rows
// under its game id; every event key has a sorted set of game ids scored by
// finish time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "eventd:ranking"
	}
	logger := log.WithComponent("store")
	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis ranking store")

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) gameKey(gameID string) string {
	return s.prefix + ":game:" + gameID
}

func (s *RedisStore) indexKey(k model.EventKey) string {
	return fmt.Sprintf("%s:key:%d:%d:%s", s.prefix, k.MapNumber, k.Level, k.Owner)
}

func (s *RedisStore) SaveRankings(ctx context.Context, rows []model.RankingRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range rows {
			val, err := json.Marshal(r)
			if err != nil {
				return err
			}
			pipe.RPush(ctx, s.gameKey(r.GameID), val)
			pipe.ZAdd(ctx, s.indexKey(r.Key()), redis.Z{
				Score:  float64(r.FinishedAt.UnixMilli()),
				Member: r.GameID,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save rankings: %w", err)
	}
	return nil
}

func (s *RedisStore) ListByGame(ctx context.Context, gameID string) ([]model.RankingRow, error) {
	vals, err := s.client.LRange(ctx, s.gameKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.RankingRow, 0, len(vals))
	for _, v := range vals {
		var r model.RankingRow
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("decode ranking row: %w", err)
		}
		out = append(out, r)
	}
	byRank(out)
	return out, nil
}

func (s *RedisStore) ListByKey(ctx context.Context, key model.EventKey, limit int) ([]model.RankingRow, error) {
	limit = clampLimit(limit)
	games, err := s.client.ZRevRangeByScore(ctx, s.indexKey(key), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	var out []model.RankingRow
	for _, id := range games {
		rows, err := s.ListByGame(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", strconv.Quote(id), err)
		}
		out = append(out, rows...)
		if len(out) >= limit {
			break
		}
	}
	newestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
