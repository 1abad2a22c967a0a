// internal/database/results.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	session_id     UUID PRIMARY KEY,
	mode           TEXT NOT NULL,
	role_a_name    TEXT NOT NULL,
	role_b_name    TEXT NOT NULL,
	match_count    INT NOT NULL,
	competitive    BOOLEAN NOT NULL,
	score_a        INT NOT NULL,
	score_b        INT NOT NULL,
	draws          INT NOT NULL,
	matches_played INT NOT NULL,
	reason         TEXT NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	ended_at       TIMESTAMPTZ NOT NULL
)`

// ResultStore writes finished sessions to the match_results table.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// EnsureSchema creates the results table if it does not exist yet.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create match_results: %w", err)
	}
	return nil
}

// RecordResult inserts res. Recording the same session twice is a no-op.
func (s *ResultStore) RecordResult(ctx context.Context, res game.SeriesResult) error {
	q := `
		INSERT INTO match_results (
			session_id, mode, role_a_name, role_b_name, match_count, competitive,
			score_a, score_b, draws, matches_played, reason, started_at, ended_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, q,
		res.SessionID, string(res.Kind), res.RoleAName, res.RoleBName,
		res.Options.MatchCount, res.Options.Competitive,
		res.Scores.RoleA, res.Scores.RoleB, res.Scores.Draws,
		res.MatchesPlayed, string(res.Reason), res.StartedAt, res.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result %s: %w", res.SessionID, err)
	}
	return nil
}

// Result loads one stored result.
func (s *ResultStore) Result(ctx context.Context, id uuid.UUID) (game.SeriesResult, bool, error) {
	q := `
		SELECT session_id, mode, role_a_name, role_b_name, match_count, competitive,
		       score_a, score_b, draws, matches_played, reason, started_at, ended_at
		FROM match_results
		WHERE session_id = $1
	`
	var (
		res          game.SeriesResult
		mode, reason string
	)
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&res.SessionID, &mode, &res.RoleAName, &res.RoleBName,
		&res.Options.MatchCount, &res.Options.Competitive,
		&res.Scores.RoleA, &res.Scores.RoleB, &res.Scores.Draws,
		&res.MatchesPlayed, &reason, &res.StartedAt, &res.EndedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.SeriesResult{}, false, nil
	}
	if err != nil {
		return game.SeriesResult{}, false, fmt.Errorf("failed to load result %s: %w", id, err)
	}
	res.Kind = game.Kind(mode)
	res.Reason = game.Reason(reason)
	return res, true, nil
}

var _ game.Recorder = (*ResultStore)(nil)
