package gameapi

import (
	"errors"
	"net/http"

	"github.com/beka-birhanu/wumpus-api/game"
	"github.com/beka-birhanu/wumpus-api/service"
	"github.com/gin-gonic/gin"
)

// respondError maps lobby errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPlayerDead) {
		c.JSON(http.StatusBadRequest, gin.H{"status": string(game.StatusLost), "message": "You are dead and cannot act."})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, game.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotYourTurn):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrGameNotOpen),
		errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrGameOver):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"status": "error", "message": err.Error()})
}
