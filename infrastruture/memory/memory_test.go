package memory

import (
	"context"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRecordRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRecordRepo()
	now := time.Now()

	older := &dmn.GameRecord{ID: uuid.New(), Outcome: dmn.OutcomeAllDead, EndedAt: now.Add(-time.Minute)}
	newer := &dmn.GameRecord{ID: uuid.New(), Outcome: dmn.OutcomeWumpusKilled, EndedAt: now}
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	records, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)

	records, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	newer.Turns = 12
	require.NoError(t, repo.Save(ctx, newer))
	records, _ = repo.Recent(ctx, 10)
	assert.Len(t, records, 2)
	assert.Equal(t, 12, records[0].Turns)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	board := NewLeaderboard()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, board.Record(ctx, &dmn.GameRecord{Players: []uuid.UUID{alice, bob}, Winner: &alice}))
	require.NoError(t, board.Record(ctx, &dmn.GameRecord{Players: []uuid.UUID{alice, bob}, Winner: &alice}))
	require.NoError(t, board.Record(ctx, &dmn.GameRecord{Players: []uuid.UUID{alice, bob}, Winner: &bob}))
	require.NoError(t, board.Record(ctx, &dmn.GameRecord{Players: []uuid.UUID{bob}}))

	top, err := board.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, dmn.LeaderboardEntry{PlayerID: alice.String(), Wins: 2, Played: 3}, top[0])
	assert.Equal(t, dmn.LeaderboardEntry{PlayerID: bob.String(), Wins: 1, Played: 4}, top[1])

	top, err = board.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
