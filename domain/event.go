package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a game event pushed to subscribers.
type EventType string

// Game events.
const (
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventTurn         EventType = "turn"
	EventGameOver     EventType = "game_over"
)

// GameEvent is broadcast to everyone watching a game.
type GameEvent struct {
	Type          EventType  `json:"type"`
	GameID        uuid.UUID  `json:"game_id"`
	PlayerID      *uuid.UUID `json:"player_id,omitempty"`
	CurrentPlayer *uuid.UUID `json:"current_player,omitempty"`
	Status        string     `json:"status,omitempty"`
	Message       string     `json:"message,omitempty"`
	At            time.Time  `json:"at"`
}
