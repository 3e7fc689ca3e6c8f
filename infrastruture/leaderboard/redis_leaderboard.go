package leaderboard

import (
	"context"
	"fmt"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	winsKey   = "wumpus:leaderboard:wins"
	playedKey = "wumpus:leaderboard:played"
	lockKey   = "wumpus:leaderboard:lock"
)

// RedisLeaderboard keeps win and play counts in two Redis sorted sets.
type RedisLeaderboard struct {
	client     *redis.Client
	locker     *redsync.Redsync
	maxEntries int64
}

// NewRedisLeaderboard initializes a RedisLeaderboard that keeps at most maxEntries winners.
func NewRedisLeaderboard(client *redis.Client, maxEntries int) *RedisLeaderboard {
	pool := goredis.NewPool(client)
	return &RedisLeaderboard{
		client:     client,
		locker:     redsync.New(pool),
		maxEntries: int64(maxEntries),
	}
}

// Record credits every player of a finished game with a play and the winner with a win,
// then trims the winners set to its size cap.
func (r *RedisLeaderboard) Record(ctx context.Context, record *dmn.GameRecord) error {
	mutex := r.locker.NewMutex(lockKey)
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("locking leaderboard: %w", err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	pipe := r.client.Pipeline()
	for _, p := range record.Players {
		pipe.ZIncrBy(ctx, playedKey, 1, p.String())
	}
	if record.Winner != nil {
		pipe.ZIncrBy(ctx, winsKey, 1, record.Winner.String())
	}
	if r.maxEntries > 0 {
		pipe.ZRemRangeByRank(ctx, winsKey, 0, -(r.maxEntries + 1))
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Top returns up to n winners with the most wins first.
func (r *RedisLeaderboard) Top(ctx context.Context, n int) ([]dmn.LeaderboardEntry, error) {
	winners, err := r.client.ZRevRangeWithScores(ctx, winsKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, err
	}

	pipe := r.client.Pipeline()
	played := make([]*redis.FloatCmd, len(winners))
	for k, z := range winners {
		played[k] = pipe.ZScore(ctx, playedKey, z.Member.(string))
	}
	if len(winners) > 0 {
		if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
			return nil, err
		}
	}

	entries := make([]dmn.LeaderboardEntry, 0, len(winners))
	for k, z := range winners {
		entries = append(entries, dmn.LeaderboardEntry{
			PlayerID: z.Member.(string),
			Wins:     int64(z.Score),
			Played:   int64(played[k].Val()),
		})
	}
	return entries, nil
}
