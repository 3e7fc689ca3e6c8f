package gameapi

import (
	"net/http"

	"github.com/beka-birhanu/wumpus-api/api/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextPlayerID is the key used to store the resolved player ID in the Gin context.
	ContextPlayerID = "playerID"
	// ContextGameID is the key used to store the player's game ID in the Gin context.
	ContextGameID = "gameID"
)

// PlayerResolver resolves the :playerID path parameter to a seated player.
// Requests without one pass through untouched.
func PlayerResolver(sessions i.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("playerID")
		if raw == "" {
			c.Next()
			return
		}

		playerID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid player ID."})
			return
		}

		gameID, err := sessions.GameOf(playerID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": "error", "message": "Player or game not found."})
			return
		}

		c.Set(ContextPlayerID, playerID)
		c.Set(ContextGameID, gameID)
		c.Next()
	}
}

func playerFromContext(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextPlayerID).(uuid.UUID)
}
