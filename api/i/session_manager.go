package i

import (
	"context"
	"net/http"

	dmn "github.com/beka-birhanu/wumpus-api/domain"
	"github.com/beka-birhanu/wumpus-api/game"
	"github.com/beka-birhanu/wumpus-api/game/cave"
	"github.com/beka-birhanu/wumpus-api/service"
	"github.com/google/uuid"
)

// SessionManager is the game lobby the HTTP controllers drive.
type SessionManager interface {
	CreateGame(ctx context.Context) (*service.JoinInfo, error)
	JoinGame(gameID uuid.UUID) (*service.JoinInfo, error)
	LeaveGame(ctx context.Context, playerID uuid.UUID) error
	DeleteGame(ctx context.Context, gameID uuid.UUID) error
	ListGames() []service.GameSummary
	TurnStatus(gameID uuid.UUID) (service.TurnInfo, error)
	TakeTurn(ctx context.Context, playerID uuid.UUID, action game.Action, target int) (*service.TurnOutcome, error)
	PlayerStatus(playerID uuid.UUID) (game.PlayerStatus, error)
	Neighbors(playerID uuid.UUID) (cave.Links, error)
	MapData(gameID uuid.UUID) ([]cave.Links, error)
	Hazards(gameID uuid.UUID) (game.Hazards, error)
	GameOf(playerID uuid.UUID) (uuid.UUID, error)
	Leaderboard(ctx context.Context, n int) ([]dmn.LeaderboardEntry, error)
	History(ctx context.Context, n int) ([]*dmn.GameRecord, error)
}

// EventStreamer upgrades a request into a stream of game events.
type EventStreamer interface {
	Serve(gameID uuid.UUID, w http.ResponseWriter, r *http.Request) error
}
