package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/api"
	agentapi "github.com/beka-birhanu/vinom-autoplayer/api/agent"
	api_i "github.com/beka-birhanu/vinom-autoplayer/api/i"
	"github.com/beka-birhanu/vinom-autoplayer/api/identity"
	"github.com/beka-birhanu/vinom-autoplayer/config"
	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/arena"
	"github.com/beka-birhanu/vinom-autoplayer/infrastruture/broker"
	"github.com/beka-birhanu/vinom-autoplayer/infrastruture/codec"
	"github.com/beka-birhanu/vinom-autoplayer/infrastruture/lease"
	"github.com/beka-birhanu/vinom-autoplayer/infrastruture/repo"
	"github.com/beka-birhanu/vinom-autoplayer/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-autoplayer/infrastruture/token"
	"github.com/beka-birhanu/vinom-autoplayer/service"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	redisClient     *redis.Client
	mongoClient     *mongo.Client
	msgBroker       i.Broker
	gameCodec       i.GameCodec
	turnRepo        i.TurnRepo
	operatorRepo    i.OperatorRepo
	playerLease     i.Lease
	leaderboard     i.Leaderboard
	playerService   *service.PlayerService
	jwtTokenizer    i.Tokenizer
	authService     i.Authenticator
	authController  api_i.Controller
	agentController api_i.Controller
	router          *api.Router
	appLogger       general_i.Logger
)

func newLogger(prefix, color string) general_i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func session() game.Session {
	return game.Session{
		LobbyName:  config.Envs.LobbyName,
		TeamName:   config.Envs.TeamName,
		PlayerName: config.Envs.PlayerName,
	}
}

func initRedis(ctx context.Context) {
	if config.Envs.RedisHost == "" {
		appLogger.Info("Redis not configured")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Envs.RedisHost, config.Envs.RedisPort),
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initBroker(ctx context.Context, clientID string) {
	brokerLogger := newLogger("BROKER", config.ColorBlue)

	switch config.Envs.BrokerKind {
	case "mqtt":
		m, err := broker.NewMQTT(ctx, broker.MQTTConfig{
			Host:     config.Envs.BrokerAddress,
			Port:     config.Envs.BrokerPort,
			ClientID: clientID,
			Username: config.Envs.BrokerUser,
			Password: config.Envs.BrokerPassword,
			TLS:      config.Envs.BrokerTLS,
			QoS:      1,

			// Host handlers publish from inside delivery.
			Unordered: config.Envs.AppMode == config.ModeHost,
		}, brokerLogger)
		if err != nil {
			appLogger.Error(fmt.Sprintf("Connecting to MQTT broker: %v", err))
			os.Exit(1)
		}
		msgBroker = m
	case "redis":
		if redisClient == nil {
			appLogger.Error("Redis broker requires REDIS_HOST")
			os.Exit(1)
		}
		msgBroker = broker.NewRedisPubSub(redisClient, brokerLogger)
	default:
		appLogger.Error(fmt.Sprintf("Unknown broker kind %q", config.Envs.BrokerKind))
		os.Exit(1)
	}

	gameCodec = codec.NewJSON()
	appLogger.Info(fmt.Sprintf("%s broker initialized", config.Envs.BrokerKind))
}

func initMongo(ctx context.Context) {
	if config.Envs.DBHost == "" {
		appLogger.Info("MongoDB not configured, turn journal and monitor API disabled")
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

func initRepos(ctx context.Context) {
	turns := repo.NewTurnRepo(mongoClient, config.Envs.DBName, "turns")
	if err := turns.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating turn indexes: %v", err))
		os.Exit(1)
	}
	turnRepo = turns

	operators := repo.NewOperatorRepo(mongoClient, config.Envs.DBName, "operators")
	if err := operators.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating operator indexes: %v", err))
		os.Exit(1)
	}
	operatorRepo = operators
	appLogger.Info("Repositories initialized")
}

func initLeaderboard() {
	if redisClient == nil {
		return
	}

	var err error
	leaderboard, err = sortedstorage.NewRedisLeaderboard(redisClient, 24*60*60)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Leaderboard initialized")
}

func initLease() {
	if redisClient == nil {
		return
	}

	var err error
	ttl := time.Duration(config.Envs.LeaseTTLSeconds) * time.Second
	playerLease, err = lease.NewRedisLease(redisClient, session(), ttl)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating player lease: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Player lease initialized")
}

func initPlayerService() {
	player, err := game.NewAutoPlayer(session())
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating autoplayer: %v", err))
		os.Exit(1)
	}

	policy, err := service.ParseExhaustionPolicy(config.Envs.ExhaustionPolicy)
	if err != nil {
		appLogger.Error(err.Error())
		os.Exit(1)
	}

	playerService, err = service.NewPlayerService(&service.PlayerConfig{
		Player:           player,
		Broker:           msgBroker,
		Codec:            gameCodec,
		Turns:            turnRepo,
		Lease:            playerLease,
		Logger:           newLogger("PLAYER", config.ColorCyan),
		ExhaustionPolicy: policy,
		MoveDelay:        time.Duration(config.Envs.MoveDelayMS) * time.Millisecond,
		LogWorld:         config.Envs.LogWorld,
		LeaseRefresh:     time.Duration(config.Envs.LeaseTTLSeconds) * time.Second / 3,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating player service: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Player %s initialized", player.ID()))
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuth(operatorRepo, jwtTokenizer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initControllers() {
	authController = identity.NewIdentityServer(authService)

	var err error
	agentController, err = agentapi.NewAgentController(playerService)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating agent controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, agentController},
		AuthorizationMiddleware: identity.Authorize(t),
	})
	appLogger.Info("Router initialized")
}

func closeAll() {
	if msgBroker != nil {
		if err := msgBroker.Close(); err != nil {
			appLogger.Warning(fmt.Sprintf("Closing broker: %v", err))
		}
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(context.Background())
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func runPlay(ctx, setupCtx context.Context) {
	s := session()
	initRedis(setupCtx)
	initBroker(setupCtx, fmt.Sprintf("%s-%s-%s", s.LobbyName, s.PlayerName, uuid.NewString()[:8]))
	initMongo(setupCtx)
	if mongoClient != nil {
		initRepos(setupCtx)
	}
	initLease()
	initPlayerService()

	if operatorRepo != nil {
		if config.Envs.JWTSecret == "" {
			appLogger.Error("JWT_SECRET is required for the monitor API")
			os.Exit(1)
		}
		initJWTTokenizer()
		initAuthService()
		initControllers()
		initRouter(jwtTokenizer)

		go func() {
			if err := router.Run(); err != nil {
				appLogger.Error(fmt.Sprintf("Starting server: %v", err))
			}
		}()
	}

	if err := playerService.Run(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Player stopped: %v", err))
		closeAll()
		os.Exit(1)
	}
}

func newArenaFactory() service.ArenaFactory {
	return func(game.Session) (*arena.Arena, error) {
		opts := arena.Options{
			Seed:        config.Envs.ArenaSeed,
			CoinDensity: config.Envs.ArenaCoinDensity,
			Maze:        arena.MazeSeeded,
		}
		if opts.Seed == 0 {
			opts.Seed = time.Now().UnixNano()
			opts.Maze = arena.MazeLibrary
		}
		return arena.New(opts)
	}
}

func runHost(ctx, setupCtx context.Context) {
	initRedis(setupCtx)
	initBroker(setupCtx, fmt.Sprintf("%s-host-%s", config.Envs.LobbyName, uuid.NewString()[:8]))

	initLeaderboard()

	host, err := service.NewArenaHost(&service.ArenaHostConfig{
		Broker:      msgBroker,
		Codec:       gameCodec,
		Logger:      newLogger("ARENA", config.ColorMagenta),
		Leaderboard: leaderboard,
		LobbyName:   config.Envs.LobbyName,
		NewArena:    newArenaFactory(),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating arena host: %v", err))
		os.Exit(1)
	}

	if err := host.Run(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Hosting lobby: %v", err))
		closeAll()
		os.Exit(1)
	}

	for team, score := range host.Scores() {
		appLogger.Info(fmt.Sprintf("Final score of %s: %d", team, score))
	}

	if leaderboard != nil {
		standings, err := leaderboard.Top(context.Background(), config.Envs.LobbyName, 10)
		if err != nil {
			appLogger.Warning(fmt.Sprintf("Reading leaderboard: %v", err))
			return
		}
		for rank, s := range standings {
			appLogger.Info(fmt.Sprintf("#%d %s %d", rank+1, s.Team, s.Score))
		}
	}
}

func runSimulate(ctx context.Context) {
	a, err := newArenaFactory()(session())
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating arena: %v", err))
		os.Exit(1)
	}
	player, err := game.NewAutoPlayer(session())
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating autoplayer: %v", err))
		os.Exit(1)
	}

	simLogger := newLogger("SIMULATOR", config.ColorYellow)
	report, err := service.NewSimulator(simLogger, config.Envs.SimulationMaxTurns).Run(ctx, player, a)
	if config.Envs.LogWorld {
		appLogger.Info(fmt.Sprintf("Arena:\n%s", a))
	}
	if errors.Is(err, service.ErrTurnLimit) {
		appLogger.Warning(fmt.Sprintf("Simulation hit the turn limit: %s", report))
		return
	}
	if err != nil {
		appLogger.Error(fmt.Sprintf("Simulation failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Simulation finished: %s", report))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel() // Ensure the context is always canceled

	// Initialize dependencies
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	defer closeAll()

	switch config.Envs.AppMode {
	case config.ModePlay:
		runPlay(ctx, setupCtx)
	case config.ModeHost:
		runHost(ctx, setupCtx)
	case config.ModeSimulate:
		runSimulate(ctx)
	default:
		appLogger.Error(fmt.Sprintf("Unknown APP_MODE %q", config.Envs.AppMode))
		os.Exit(1)
	}
}
