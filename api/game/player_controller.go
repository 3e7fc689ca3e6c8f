package gameapi

import (
	"net/http"

	"github.com/beka-birhanu/wumpus-api/api/i"
	"github.com/beka-birhanu/wumpus-api/game"
	"github.com/gin-gonic/gin"
)

// PlayerController serves the actions of a seated player.
type PlayerController struct {
	sessions i.SessionManager
}

// NewPlayerController initializes a PlayerController.
func NewPlayerController(sessions i.SessionManager) *PlayerController {
	return &PlayerController{sessions: sessions}
}

// RegisterPublic registers public routes.
func (pc *PlayerController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterPlayerScoped registers routes that need a resolved player.
func (pc *PlayerController) RegisterPlayerScoped(route *gin.RouterGroup) {
	players := route.Group("/players/:playerID")
	{
		players.GET("/status", pc.status)
		players.GET("/neighbors", pc.neighbors)
		players.POST("/move", pc.move)
		players.POST("/shoot", pc.shoot)
		players.POST("/pass", pc.pass)
		players.DELETE("", pc.leave)
	}
}

func (pc *PlayerController) status(ctx *gin.Context) {
	status, err := pc.sessions.PlayerStatus(playerFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, StatusResponse{
		Location:    status.Location,
		Arrows:      status.Arrows,
		Perceptions: perceptionMessages(status.Perceptions),
		Alive:       status.Alive,
		Visited:     status.Visited,
	})
}

func (pc *PlayerController) neighbors(ctx *gin.Context) {
	links, err := pc.sessions.Neighbors(playerFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NeighborsResponse{Neighbors: links})
}

func (pc *PlayerController) move(ctx *gin.Context) {
	pc.targeted(ctx, game.ActionMove)
}

func (pc *PlayerController) shoot(ctx *gin.Context) {
	pc.targeted(ctx, game.ActionShoot)
}

func (pc *PlayerController) pass(ctx *gin.Context) {
	pc.act(ctx, game.ActionPass, game.NoTarget)
}

func (pc *PlayerController) targeted(ctx *gin.Context, action game.Action) {
	var request TargetRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "A target room is required."})
		return
	}
	pc.act(ctx, action, *request.Target)
}

// act runs a turn. Rejected actions answer 400 with the turn result.
func (pc *PlayerController) act(ctx *gin.Context, action game.Action, target int) {
	outcome, err := pc.sessions.TakeTurn(ctx.Request.Context(), playerFromContext(ctx), action, target)
	if err != nil {
		respondError(ctx, err)
		return
	}

	code := http.StatusOK
	if outcome.Result.Status == game.StatusError {
		code = http.StatusBadRequest
	}
	ctx.JSON(code, newTurnResponse(outcome))
}

func (pc *PlayerController) leave(ctx *gin.Context) {
	if err := pc.sessions.LeaveGame(ctx.Request.Context(), playerFromContext(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
