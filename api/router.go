package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beka-birhanu/wumpus-api/api/i"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Router manages the HTTP server and its dependencies,
// including controllers and the player middleware.
type Router struct {
	addr             string
	baseURL          string
	controllers      []i.Controller
	playerMiddleware gin.HandlerFunc
	middlewares      []gin.HandlerFunc
	metricsHandler   http.Handler
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr             string // Address to listen on
	BaseURL          string // Base URL for API routes
	Controllers      []i.Controller
	PlayerMiddleware gin.HandlerFunc   // Guards the per-player routes
	Middlewares      []gin.HandlerFunc // Applied to every route
	MetricsHandler   http.Handler      // Served on /metrics when set
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		addr:             config.Addr,
		baseURL:          config.BaseURL,
		controllers:      config.Controllers,
		playerMiddleware: config.PlayerMiddleware,
		middlewares:      config.Middlewares,
		metricsHandler:   config.MetricsHandler,
	}
}

// Handler builds the gin engine with every route registered.
//
// Routes are grouped under the base URL with two access levels:
// - Public routes: games, leaderboard and history.
// - Player routes: resolved through the player middleware first.
func (r *Router) Handler() *gin.Engine {
	router := gin.Default()
	router.Use(r.middlewares...)

	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	api := router.Group(r.baseURL)

	{
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		playerRoutes := api.Group("/v1")
		if r.playerMiddleware != nil {
			playerRoutes.Use(r.playerMiddleware)
		}
		{
			for _, c := range r.controllers {
				c.RegisterPlayerScoped(playerRoutes)
			}
		}
	}

	return router
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully.
func (r *Router) Run(ctx context.Context) error {
	gin.ForceConsoleColor()
	server := &http.Server{
		Addr:    r.addr,
		Handler: r.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
