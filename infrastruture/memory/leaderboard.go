package memory

import (
	"context"
	"sort"
	"sync"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
)

// Leaderboard counts wins and plays in memory.
type Leaderboard struct {
	mu     sync.Mutex
	wins   map[string]int64
	played map[string]int64
}

// NewLeaderboard returns an empty leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		wins:   make(map[string]int64),
		played: make(map[string]int64),
	}
}

// Record credits a finished game.
func (l *Leaderboard) Record(_ context.Context, record *dmn.GameRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range record.Players {
		l.played[p.String()]++
	}
	if record.Winner != nil {
		l.wins[record.Winner.String()]++
	}
	return nil
}

// Top returns up to n winners ordered by wins. Ties are broken by player ID.
func (l *Leaderboard) Top(_ context.Context, n int) ([]dmn.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]dmn.LeaderboardEntry, 0, len(l.wins))
	for id, wins := range l.wins {
		entries = append(entries, dmn.LeaderboardEntry{PlayerID: id, Wins: wins, Played: l.played[id]})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Wins != entries[b].Wins {
			return entries[a].Wins > entries[b].Wins
		}
		return entries[a].PlayerID < entries[b].PlayerID
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
