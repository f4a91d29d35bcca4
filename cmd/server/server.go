package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/api/websocket"
	"codeberg.org/kartuli/server/internal/auth"
	"codeberg.org/kartuli/server/internal/config"
	"codeberg.org/kartuli/server/internal/database"
	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/internal/quota"
	ws "codeberg.org/kartuli/server/internal/websocket"
	"codeberg.org/kartuli/server/kartuli/payments"
	"codeberg.org/kartuli/server/kartuli/users"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return nil, err
	}

	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}

		redisClient = redis.NewClient(opts)

		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	gate := quota.NewGate(usageStore(cfg, db, redisClient), quota.WithTrackingDisabled(cfg.DisableTokenTracking))

	logger.Info("quota gate initialized",
		"store", cfg.UsageStore,
		"tracking_disabled", gate.Disabled(),
	)

	services, err := InitializeServices(cfg, gate)
	if err != nil {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		}
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	providers, err := auth.InitializeProviders(cfg)
	if err != nil {
		logger.WarnErr(err, "oauth providers not initialized")
	} else {
		logger.Info("oauth providers initialized", "providers", providers)
	}

	userRepo := users.NewRepository(db)

	hub := ws.NewHub()
	websocket.RegisterHandlers(hub, services.Chat, gate, userRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		db:          db,
		redis:       redisClient,
		config:      cfg,
		userRepo:    userRepo,
		paymentRepo: payments.NewRepository(db),
		gate:        gate,
		resolver:    actor.NewResolver(userRepo, services.Guests),
		services:    services,
		hub:         hub,
		router:      gin.Default(),
	}

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close()
		return nil, err
	}

	return server, nil
}

// picks the usage counter backend named by USAGE_STORE
func usageStore(cfg *config.Config, db quota.DB, redisClient *redis.Client) quota.Store {
	switch cfg.UsageStore {
	case config.UsageStoreRedis:
		return quota.NewRedisStore(redisClient)
	case config.UsageStoreMemory:
		logger.Warn("using in-memory usage store, counters reset on restart")
		return quota.NewMemoryStore()
	default:
		return quota.NewPostgresStore(db)
	}
}

// releases database and redis connections
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	s.db.Close()
}
