package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Application modes.
const (
	ModePlay     = "play"     // Play a lobby over the broker
	ModeHost     = "host"     // Host a lobby with generated arenas
	ModeSimulate = "simulate" // Play a generated arena in-process
)

// Config holds the application's configuration values.
type Config struct {
	AppMode            string  // One of play, host or simulate
	HostIP             string  // Host IP for the monitor server
	RESTPort           int     // Port for the monitor REST API
	GinMode            string  // Mode for the Gin framework (e.g., release, debug, test)
	BrokerKind         string  // Broker transport, mqtt or redis
	BrokerAddress      string  // Hostname or IP address of the MQTT broker
	BrokerPort         int     // Port of the MQTT broker
	BrokerUser         string  // Username for the MQTT broker
	BrokerPassword     string  // Password for the MQTT broker
	BrokerTLS          bool    // Connect to the MQTT broker over TLS
	RedisHost          string  // Hostname or IP address for Redis, empty disables the lease
	RedisPort          int     // Port number for Redis
	RedisPassword      string  // Password for Redis
	DBHost             string  // Hostname or IP address for the database, empty disables journaling
	DBPort             int     // Port number for the database
	DBUser             string  // Username for the database
	DBPassword         string  // Password for the database
	DBName             string  // Name of the database
	JWTSecret          string  // Secret key for JWT signing
	JWTIssuer          string  // Issuer claim for JWTs
	LobbyName          string  // Lobby to join or host
	TeamName           string  // Team the player plays for
	PlayerName         string  // Player identity within the lobby
	ExhaustionPolicy   string  // idle or stop
	MoveDelayMS        int     // Pause before each published move
	LeaseTTLSeconds    int     // Lifetime of the player lease
	LogWorld           bool    // Log the belief grid after every turn
	ArenaSeed          int64   // Seed of generated arenas, 0 uses the wilson-maze library and a clock seed
	ArenaCoinDensity   float64 // Share of open cells holding a coin
	SimulationMaxTurns int     // Turn limit in simulate mode
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

	return Config{
		AppMode:            getEnvWithDefault("APP_MODE", ModePlay),
		HostIP:             getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:           getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:            getEnvWithDefault("GIN_MODE", "release"),
		BrokerKind:         getEnvWithDefault("BROKER_KIND", "mqtt"),
		BrokerAddress:      getEnvWithDefault("BROKER_ADDRESS", "localhost"),
		BrokerPort:         getEnvAsIntWithDefault("BROKER_PORT", 1883),
		BrokerUser:         getEnvWithDefault("BROKER_USER", ""),
		BrokerPassword:     getEnvWithDefault("BROKER_PASS", ""),
		BrokerTLS:          getEnvAsBoolWithDefault("BROKER_TLS", false),
		RedisHost:          getEnvWithDefault("REDIS_HOST", ""),
		RedisPort:          getEnvAsIntWithDefault("REDIS_PORT", 6379),
		RedisPassword:      getEnvWithDefault("REDIS_PASS", ""),
		DBHost:             getEnvWithDefault("DB_HOST", ""),
		DBPort:             getEnvAsIntWithDefault("DB_PORT", 27017),
		DBUser:             getEnvWithDefault("DB_USER", ""),
		DBPassword:         getEnvWithDefault("DB_PASS", ""),
		DBName:             getEnvWithDefault("DB_NAME", "autoplayer"),
		JWTSecret:          getEnvWithDefault("JWT_SECRET", ""),
		JWTIssuer:          getEnvWithDefault("JWT_ISSUER", "vinom-autoplayer"),
		LobbyName:          getEnvWithDefault("LOBBY_NAME", "FirstLobby"),
		TeamName:           getEnvWithDefault("TEAM_NAME", "Team1"),
		PlayerName:         getEnvWithDefault("PLAYER_NAME", "Player1"),
		ExhaustionPolicy:   getEnvWithDefault("EXHAUSTION_POLICY", "idle"),
		MoveDelayMS:        getEnvAsIntWithDefault("MOVE_DELAY_MS", 0),
		LeaseTTLSeconds:    getEnvAsIntWithDefault("LEASE_TTL_SECONDS", 15),
		LogWorld:           getEnvAsBoolWithDefault("LOG_WORLD", false),
		ArenaSeed:          int64(getEnvAsIntWithDefault("ARENA_SEED", 0)),
		ArenaCoinDensity:   getEnvAsFloatWithDefault("ARENA_COIN_DENSITY", 0.4),
		SimulationMaxTurns: getEnvAsIntWithDefault("SIMULATION_MAX_TURNS", 500),
	}
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an environment variable as an integer or logs a fatal error if it cannot be parsed.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvAsBoolWithDefault retrieves an environment variable as a boolean.
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a boolean: %v", key, err)
	}
	return value
}

// getEnvAsFloatWithDefault retrieves an environment variable as a float.
func getEnvAsFloatWithDefault(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a number: %v", key, err)
	}
	return value
}
