package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome describes how a game ended.
type Outcome string

// Game outcomes.
const (
	OutcomeWumpusKilled Outcome = "wumpus_killed"
	OutcomeAllDead      Outcome = "all_dead"
	OutcomeAbandoned    Outcome = "abandoned"
)

// GameRecord is the persisted summary of a finished game.
type GameRecord struct {
	ID        uuid.UUID   `bson:"_id" json:"id"`
	Seed      string      `bson:"seed" json:"seed"`
	Players   []uuid.UUID `bson:"players" json:"players"`
	Winner    *uuid.UUID  `bson:"winner,omitempty" json:"winner,omitempty"`
	Outcome   Outcome     `bson:"outcome" json:"outcome"`
	Turns     int         `bson:"turns" json:"turns"`
	StartedAt time.Time   `bson:"startedAt" json:"started_at"`
	EndedAt   time.Time   `bson:"endedAt" json:"ended_at"`
}

// LeaderboardEntry is one player's standing.
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Wins     int64  `json:"wins"`
	Played   int64  `json:"played"`
}
