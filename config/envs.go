package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP        string // Host IP for the server
	RESTPort      int    // Port for the REST API
	GinMode       string // Mode for the Gin framework (e.g., release, debug, test)
	MapWidth      int    // Number of grid columns of every cave
	MapHeight     int    // Number of grid rows of every cave
	MapRoomCount  int    // Rooms scattered besides spawns and corridors
	MapTrapCount  int    // Maximum number of pits
	MapBatCount   int    // Maximum number of bat rooms
	MapSeed       string // Fixed cave seed; empty for a fresh cave per game
	DBHost        string // Hostname or IP address for the database; empty keeps records in memory
	DBPort        int    // Port number for the database
	DBUser        string // Username for the database
	DBPassword    string // Password for the database
	DBName        string // Name of the database
	RedisAddr     string // Redis address for the leaderboard; empty keeps it in memory
	RedisPassword string // Password for Redis
	RedisDB       int    // Redis database number
	OTelEnabled   bool   // Export traces over OTLP/HTTP
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	c := Config{
		HostIP:        getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:      getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:       getEnvWithDefault("GIN_MODE", "release"),
		MapWidth:      getEnvAsIntWithDefault("MAP_WIDTH", 8),
		MapHeight:     getEnvAsIntWithDefault("MAP_HEIGHT", 8),
		MapRoomCount:  getEnvAsIntWithDefault("MAP_ROOM_COUNT", 30),
		MapTrapCount:  getEnvAsIntWithDefault("MAP_TRAP_COUNT", 4),
		MapBatCount:   getEnvAsIntWithDefault("MAP_BAT_COUNT", 4),
		MapSeed:       getEnvWithDefault("MAP_SEED", ""),
		DBHost:        getEnvWithDefault("DB_HOST", ""),
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", 0),
		OTelEnabled:   getEnvAsBoolWithDefault("OTEL_ENABLED", false),
	}

	// The database is optional, but once a host is given the rest must be too.
	if c.DBHost != "" {
		c.DBPort = mustGetEnvAsInt("DB_PORT")
		c.DBUser = mustGetEnv("DB_USER")
		c.DBPassword = mustGetEnv("DB_PASS")
		c.DBName = mustGetEnv("DB_NAME")
	}
	return c
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault parses an integer variable, falling back to defaultValue when unset.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if _, exists := os.LookupEnv(key); !exists {
		return defaultValue
	}
	return mustGetEnvAsInt(key)
}

// getEnvAsBoolWithDefault parses a boolean variable, falling back to defaultValue when unset or malformed.
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[APP] [WARNING] Environment variable %s is not a boolean, using %v", key, defaultValue)
		return defaultValue
	}
	return parsed
}
