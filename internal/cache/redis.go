// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/redis/go-redis/v9"
)

// DefaultListName is the Redis list finished sessions are pushed onto.
const DefaultListName = "tictactoe:results"

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ResultList keeps the most recent session results in a capped Redis list,
// oldest first.
type ResultList struct {
	rdb  *redis.Client
	name string
	keep int64
}

// NewResultList stores results under name and trims the list to keep entries.
// keep <= 0 leaves the list unbounded.
func NewResultList(rdb *redis.Client, name string, keep int64) *ResultList {
	if name == "" {
		name = DefaultListName
	}
	return &ResultList{rdb: rdb, name: name, keep: keep}
}

// RecordResult serializes res and appends it to the list.
func (l *ResultList) RecordResult(ctx context.Context, res game.SeriesResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal SeriesResult: %w", err)
	}

	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, l.name, data)
		if l.keep > 0 {
			pipe.LTrim(ctx, l.name, -l.keep, -1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", l.name, err)
	}
	return nil
}

// Recent returns up to n results, newest first.
func (l *ResultList) Recent(ctx context.Context, n int64) ([]game.SeriesResult, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := l.rdb.LRange(ctx, l.name, -n, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to LRANGE Redis list '%s': %w", l.name, err)
	}

	out := make([]game.SeriesResult, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var res game.SeriesResult
		if err := json.Unmarshal([]byte(raw[i]), &res); err != nil {
			return nil, fmt.Errorf("failed to decode result in '%s': %w", l.name, err)
		}
		out = append(out, res)
	}
	return out, nil
}

var _ game.Recorder = (*ResultList)(nil)
