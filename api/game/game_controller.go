package gameapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/beka-birhanu/wumpus-api/api/i"
	service_i "github.com/beka-birhanu/wumpus-api/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GameController serves the lobby: creating, listing, joining and watching games.
type GameController struct {
	sessions i.SessionManager
	events   i.EventStreamer
	logger   service_i.Logger
}

// NewGameController initializes a GameController. events may be nil to disable streaming.
func NewGameController(sessions i.SessionManager, events i.EventStreamer, logger service_i.Logger) *GameController {
	return &GameController{
		sessions: sessions,
		events:   events,
		logger:   logger,
	}
}

// RegisterPublic registers public routes.
func (gc *GameController) RegisterPublic(route *gin.RouterGroup) {
	games := route.Group("/games")
	{
		games.POST("", gc.create)
		games.GET("", gc.list)
		games.GET("/history", gc.history)
		games.POST("/:gameID/join", gc.join)
		games.GET("/:gameID/turn", gc.turn)
		games.GET("/:gameID/map", gc.mapData)
		games.GET("/:gameID/hazards", gc.hazards)
		games.GET("/:gameID/events", gc.stream)
		games.DELETE("/:gameID", gc.delete)
	}
	route.GET("/leaderboard", gc.leaderboard)
}

// RegisterPlayerScoped registers routes that need a resolved player.
func (gc *GameController) RegisterPlayerScoped(route *gin.RouterGroup) {}

func (gc *GameController) create(ctx *gin.Context) {
	info, err := gc.sessions.CreateGame(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, newJoinResponse(info))
}

func (gc *GameController) list(ctx *gin.Context) {
	games := gc.sessions.ListGames()
	response := make([]GameResponse, 0, len(games))
	for _, g := range games {
		response = append(response, GameResponse{
			ID:            g.ID,
			Status:        string(g.Status),
			Players:       g.Players,
			NumCaves:      g.NumCaves,
			CurrentPlayer: g.CurrentPlayer,
			CreatedAt:     g.CreatedAt,
		})
	}
	ctx.JSON(http.StatusOK, response)
}

func (gc *GameController) join(ctx *gin.Context) {
	gameID, ok := gameIDParam(ctx)
	if !ok {
		return
	}

	info, err := gc.sessions.JoinGame(gameID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, newJoinResponse(info))
}

func (gc *GameController) turn(ctx *gin.Context) {
	gameID, ok := gameIDParam(ctx)
	if !ok {
		return
	}

	info, err := gc.sessions.TurnStatus(gameID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, TurnStatusResponse{
		GameID:        info.GameID,
		CurrentPlayer: info.CurrentPlayer,
		Status:        string(info.Status),
		Turn:          info.Turn,
	})
}

func (gc *GameController) mapData(ctx *gin.Context) {
	gameID, ok := gameIDParam(ctx)
	if !ok {
		return
	}

	links, err := gc.sessions.MapData(gameID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, MapResponse{Map: links})
}

func (gc *GameController) hazards(ctx *gin.Context) {
	gameID, ok := gameIDParam(ctx)
	if !ok {
		return
	}

	hazards, err := gc.sessions.Hazards(gameID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, hazards)
}

func (gc *GameController) delete(ctx *gin.Context) {
	gameID, ok := gameIDParam(ctx)
	if !ok {
		return
	}

	if err := gc.sessions.DeleteGame(ctx.Request.Context(), gameID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// stream upgrades to a websocket carrying the game's events.
func (gc *GameController) stream(ctx *gin.Context) {
	gameID, ok := gameIDParam(ctx)
	if !ok {
		return
	}
	if gc.events == nil {
		ctx.JSON(http.StatusNotImplemented, gin.H{"status": "error", "message": "Event streaming is disabled."})
		return
	}
	if _, err := gc.sessions.TurnStatus(gameID); err != nil {
		respondError(ctx, err)
		return
	}

	if err := gc.events.Serve(gameID, ctx.Writer, ctx.Request); err != nil {
		gc.logger.Warning(fmt.Sprintf("streaming events of game %s: %s", gameID, err))
		if !ctx.Writer.Written() {
			ctx.JSON(http.StatusGone, gin.H{"status": "error", "message": "The game is no longer open for watching."})
		}
	}
}

func (gc *GameController) leaderboard(ctx *gin.Context) {
	entries, err := gc.sessions.Leaderboard(ctx.Request.Context(), limitParam(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entries)
}

func (gc *GameController) history(ctx *gin.Context) {
	records, err := gc.sessions.History(ctx.Request.Context(), limitParam(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, records)
}

func gameIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	gameID, err := uuid.Parse(ctx.Param("gameID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid game ID."})
		return uuid.Nil, false
	}
	return gameID, true
}

// limitParam reads ?limit=, returning 0 (the service default) when absent or invalid.
func limitParam(ctx *gin.Context) int {
	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
