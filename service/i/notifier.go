package i

import (
	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/google/uuid"
)

// Notifier pushes game events to whoever is watching a game.
type Notifier interface {
	// Open starts accepting watchers for a game.
	Open(gameID uuid.UUID)
	// Publish must not block; it may be called with session locks held.
	Publish(gameID uuid.UUID, event dmn.GameEvent)
	// Close disconnects every watcher of a game.
	Close(gameID uuid.UUID)
}

// Metrics records service-level counters.
type Metrics interface {
	GameCreated()
	GameEnded(outcome string)
	TurnTaken(action, status string)
	SetActiveGames(n int)
}
