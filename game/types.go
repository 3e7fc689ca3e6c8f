package game

import "github.com/google/uuid"

// Action is what a player does on their turn.
type Action string

// Player actions.
const (
	ActionMove  Action = "move"
	ActionShoot Action = "shoot"
	ActionPass  Action = "pass"
)

// Status is the outcome of a turn.
type Status string

// Turn outcomes. Win and Lost end the game for the player and are not errors.
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
	StatusWin   Status = "win"
	StatusLost  Status = "lost"
)

// TurnResult reports what happened during a turn and what the player senses afterwards.
type TurnResult struct {
	Status      Status       `json:"status"`
	Message     string       `json:"message"`
	Perceptions []Perception `json:"perceptions"`
}

// Player is the engine's record of one hunter.
type Player struct {
	ID       uuid.UUID // ID identifies the player.
	Location int       // Location is the current room index.
	Arrows   int       // Arrows left to shoot.
	Alive    bool      // Alive turns false once and stays false.
	Visited  []int     // Visited lists every room entered, starting with the spawn.
	Departed bool      // Departed is set when the player leaves; their state is kept.
}

// PlayerStatus is a read-only view of a player.
type PlayerStatus struct {
	Location    int          `json:"location"`
	Arrows      int          `json:"arrows"`
	Perceptions []Perception `json:"perceptions"`
	Alive       bool         `json:"is_alive"`
	Visited     []int        `json:"visited_locations"`
}

// Hazards lists where the dangers are. Wumpus is nil once it has been killed.
type Hazards struct {
	Wumpus *int  `json:"wumpus"`
	Pits   []int `json:"pits"`
	Bats   []int `json:"bats"`
}
