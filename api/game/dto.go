// Package gameapi exposes the game lobby and player actions over HTTP.
package gameapi

import (
	"time"

	"github.com/beka-birhanu/wumpus-api/game"
	"github.com/beka-birhanu/wumpus-api/game/cave"
	"github.com/beka-birhanu/wumpus-api/service"
	"github.com/google/uuid"
)

// TargetRequest names the room a move or shot is aimed at.
type TargetRequest struct {
	Target *int `json:"target" binding:"required"`
}

// JoinResponse is returned to a player entering a game.
type JoinResponse struct {
	GameID        uuid.UUID `json:"game_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	StartLocation int       `json:"start_location"`
	Perceptions   []string  `json:"perceptions"`
	NumCaves      int       `json:"num_caves"`
	CurrentPlayer uuid.UUID `json:"current_player"`
}

// GameResponse describes one game in the game list.
type GameResponse struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	Players       int       `json:"players"`
	NumCaves      int       `json:"num_caves"`
	CurrentPlayer uuid.UUID `json:"current_player"`
	CreatedAt     time.Time `json:"created_at"`
}

// TurnStatusResponse tells whose turn it is.
type TurnStatusResponse struct {
	GameID        uuid.UUID `json:"game_id"`
	CurrentPlayer uuid.UUID `json:"current_player"`
	Status        string    `json:"status"`
	Turn          int       `json:"turn"`
}

// TurnResponse reports the result of a player action.
type TurnResponse struct {
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	Perceptions []string   `json:"perceptions"`
	NextPlayer  *uuid.UUID `json:"next_player,omitempty"`
	GameOver    bool       `json:"game_over"`
}

// StatusResponse is a player's view of themselves.
type StatusResponse struct {
	Location    int      `json:"location"`
	Arrows      int      `json:"arrows"`
	Perceptions []string `json:"perceptions"`
	Alive       bool     `json:"is_alive"`
	Visited     []int    `json:"visited_locations"`
}

// NeighborsResponse lists the links of the player's room in West, North, East, South order.
type NeighborsResponse struct {
	Neighbors cave.Links `json:"neighbors"`
}

// MapResponse holds the links of every room.
type MapResponse struct {
	Map []cave.Links `json:"map"`
}

func perceptionMessages(perceptions []game.Perception) []string {
	messages := make([]string, 0, len(perceptions))
	for _, p := range perceptions {
		messages = append(messages, p.Message())
	}
	return messages
}

func newJoinResponse(info *service.JoinInfo) JoinResponse {
	return JoinResponse{
		GameID:        info.GameID,
		PlayerID:      info.PlayerID,
		StartLocation: info.StartLocation,
		Perceptions:   perceptionMessages(info.Perceptions),
		NumCaves:      info.NumCaves,
		CurrentPlayer: info.CurrentPlayer,
	}
}

func newTurnResponse(outcome *service.TurnOutcome) TurnResponse {
	response := TurnResponse{
		Status:      string(outcome.Result.Status),
		Message:     outcome.Result.Message,
		Perceptions: perceptionMessages(outcome.Result.Perceptions),
		GameOver:    outcome.GameOver,
	}
	if outcome.NextPlayer != uuid.Nil && !outcome.GameOver {
		next := outcome.NextPlayer
		response.NextPlayer = &next
	}
	return response
}
