package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/wumpus-api/api"
	gameapi "github.com/beka-birhanu/wumpus-api/api/game"
	api_i "github.com/beka-birhanu/wumpus-api/api/i"
	"github.com/beka-birhanu/wumpus-api/config"
	"github.com/beka-birhanu/wumpus-api/game/cave"
	"github.com/beka-birhanu/wumpus-api/infrastruture/leaderboard"
	logger "github.com/beka-birhanu/wumpus-api/infrastruture/log"
	"github.com/beka-birhanu/wumpus-api/infrastruture/memory"
	"github.com/beka-birhanu/wumpus-api/infrastruture/metrics"
	"github.com/beka-birhanu/wumpus-api/infrastruture/notify"
	"github.com/beka-birhanu/wumpus-api/infrastruture/repo"
	"github.com/beka-birhanu/wumpus-api/service"
	"github.com/beka-birhanu/wumpus-api/service/i"
	"github.com/beka-birhanu/wumpus-api/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	leaderboardSize = 100
	pruneInterval   = time.Minute
	finishedGameTTL = 10 * time.Minute
)

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	redisClient        *redis.Client
	gameRecordRepo     i.GameRecordRepo
	gameLeaderboard    i.Leaderboard
	monitor            *metrics.Monitor
	eventHub           *notify.Hub
	gameSessionManager *service.GameSessionManager
	gameController     api_i.Controller
	playerController   api_i.Controller
	router             *api.Router
	appLogger          *logger.Logger
)

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initTelemetry(ctx context.Context) func(context.Context) error {
	if !config.Envs.OTelEnabled {
		appLogger.Info("Tracing disabled")
		return func(context.Context) error { return nil }
	}

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Setting up tracing: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Tracing initialized")
	return shutdown
}

func initMongo(ctx context.Context) {
	if config.Envs.DBHost == "" {
		return
	}
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initGameRecordRepo() {
	if mongoClient == nil {
		gameRecordRepo = memory.NewGameRecordRepo()
		appLogger.Warning("DB_HOST not set, game records are kept in memory")
		return
	}
	gameRecordRepo = repo.NewGameRecordRepo(mongoClient, config.Envs.DBName, "games")
	appLogger.Info("Game record repository initialized")
}

func initRedis(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initLeaderboard() {
	if redisClient == nil {
		gameLeaderboard = memory.NewLeaderboard()
		appLogger.Warning("REDIS_ADDR not set, the leaderboard is kept in memory")
		return
	}
	gameLeaderboard = leaderboard.NewRedisLeaderboard(redisClient, leaderboardSize)
	appLogger.Info("Leaderboard initialized")
}

func initMonitor() {
	monitor = metrics.NewMonitor("wumpus")
	appLogger.Info("Metrics initialized")
}

func initEventHub() {
	eventHub = notify.NewHub(newLogger("EVENT-HUB", config.ColorMagenta))
	appLogger.Info("Event hub initialized")
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		CaveOptions: cave.Options{
			Width:     config.Envs.MapWidth,
			Height:    config.Envs.MapHeight,
			RoomCount: config.Envs.MapRoomCount,
			TrapCount: config.Envs.MapTrapCount,
			BatCount:  config.Envs.MapBatCount,
		},
		Seed:        config.Envs.MapSeed,
		Records:     gameRecordRepo,
		Leaderboard: gameLeaderboard,
		Notifier:    eventHub,
		Metrics:     monitor,
		Logger:      newLogger("SESSION-MANAGER", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initControllers() {
	gameController = gameapi.NewGameController(gameSessionManager, eventHub, newLogger("GAME-API", config.ColorYellow))
	playerController = gameapi.NewPlayerController(gameSessionManager)
	appLogger.Info("Controllers initialized")
}

func initRouter() {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:             fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:          "/api",
		Controllers:      []api_i.Controller{gameController, playerController},
		PlayerMiddleware: gameapi.PlayerResolver(gameSessionManager),
		Middlewares:      []gin.HandlerFunc{monitor.Middleware()},
		MetricsHandler:   monitor.Handler(),
	})
	appLogger.Info("Router initialized")
}

// pruneFinishedGames drops ended games from memory until ctx is done.
func pruneFinishedGames(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gameSessionManager.PruneFinished(finishedGameTTL)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	defer func() {
		_ = appLogger.Sync()
	}()

	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	shutdownTracing := initTelemetry(setupCtx)
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	initMongo(setupCtx)
	if mongoClient != nil {
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	}
	initGameRecordRepo()

	initRedis(setupCtx)
	if redisClient != nil {
		defer redisClient.Close()
	}
	initLeaderboard()

	initMonitor()
	initEventHub()
	initSessionManager()
	defer gameSessionManager.StopAll()
	initControllers()
	initRouter()

	go pruneFinishedGames(ctx)

	// Run HTTP server
	if err := router.Run(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Server stopped")
}
