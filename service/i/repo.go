package i

import (
	"context"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
)

// GameRecordRepo defines the interface for game record persistence operations.
type GameRecordRepo interface {
	// Save inserts or replaces a finished game.
	Save(ctx context.Context, record *dmn.GameRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*dmn.GameRecord, error)
}

// Leaderboard keeps win and play counts per player.
type Leaderboard interface {
	// Record credits every player of a finished game with a play and the winner with a win.
	Record(ctx context.Context, record *dmn.GameRecord) error

	// Top returns up to n entries ordered by wins, highest first.
	Top(ctx context.Context, n int) ([]dmn.LeaderboardEntry, error)
}
