package i

import "github.com/gin-gonic/gin"

// Controller registers its routes on the router's two /v1 groups.
// Player-scoped routes run after the player middleware has resolved
// the :playerID path parameter and its game.
type Controller interface {
	RegisterPublic(*gin.RouterGroup)
	RegisterPlayerScoped(*gin.RouterGroup)
}
