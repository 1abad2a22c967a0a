package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestList(t *testing.T, keep int64) (*ResultList, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewResultList(rdb, "", keep), mr
}

func result(a string, scoreA int) game.SeriesResult {
	return game.SeriesResult{
		SessionID:     uuid.New(),
		Kind:          game.KindPair,
		RoleAName:     a,
		RoleBName:     "bob",
		Options:       game.Options{MatchCount: 3, Competitive: true},
		Scores:        game.Scores{RoleA: scoreA},
		MatchesPlayed: 3,
		Reason:        game.ReasonCompleted,
		StartedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		EndedAt:       time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC),
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	dead, err := miniredis.Run()
	require.NoError(t, err)
	addr := dead.Addr()
	dead.Close()
	_, err = Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestRecordAndRecent(t *testing.T) {
	list, mr := newTestList(t, 100)
	ctx := context.Background()

	first, second := result("alice", 2), result("carol", 1)
	require.NoError(t, list.RecordResult(ctx, first))
	require.NoError(t, list.RecordResult(ctx, second))

	items, err := mr.List(DefaultListName)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	recent, err := list.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.SessionID, recent[0].SessionID)
	assert.Equal(t, first, recent[1])
}

func TestRecordTrimsToKeep(t *testing.T) {
	list, mr := newTestList(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, list.RecordResult(ctx, result("alice", i)))
	}

	items, err := mr.List(DefaultListName)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	recent, err := list.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 4, recent[0].Scores.RoleA)
}

func TestRecentRejectsCorruptEntries(t *testing.T) {
	list, mr := newTestList(t, 0)
	_, err := mr.RPush(DefaultListName, "not json")
	require.NoError(t, err)

	_, err = list.Recent(context.Background(), 5)
	assert.Error(t, err)
}
