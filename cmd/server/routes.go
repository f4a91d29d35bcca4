package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"

	"codeberg.org/kartuli/server/api/rest/admin"
	"codeberg.org/kartuli/server/api/rest/auth"
	"codeberg.org/kartuli/server/api/rest/chat"
	"codeberg.org/kartuli/server/api/rest/health"
	"codeberg.org/kartuli/server/api/rest/payments"
	"codeberg.org/kartuli/server/api/rest/usage"
	"codeberg.org/kartuli/server/api/websocket"
	"codeberg.org/kartuli/server/docs"
	"codeberg.org/kartuli/server/internal/ratelimit"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	cfg := server.config

	limiterConfig := ratelimit.DefaultConfig(cfg.RateLimit)

	limiterStore, err := ratelimit.NewStore(limiterConfig, server.redis)
	if err != nil {
		return fmt.Errorf("failed to create rate limit store: %w", err)
	}

	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(MetricsMiddleware())
	router.Use(ratelimit.Middleware(limiterConfig, limiterStore))

	router.GET("/health", health.Handler(healthChecks(server)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/doc.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.userRepo)
		chat.RegisterRoutes(v1, server.services.Chat, server.resolver)
		usage.RegisterRoutes(v1, server.gate, server.resolver)
		payments.RegisterRoutes(v1, server.services.Payments, server.paymentRepo, server.userRepo, payments.Settings{
			BaseURL:  cfg.BaseURL,
			Price:    cfg.BOG.PremiumPrice,
			Currency: cfg.BOG.Currency,
		})
		admin.RegisterRoutes(v1, server.userRepo, server.paymentRepo, server.gate)
		websocket.RegisterRoutes(v1, server.hub, server.resolver, cfg)
	}

	return nil
}

func healthChecks(server *Server) map[string]health.Pinger {
	checks := map[string]health.Pinger{
		"database": server.db,
	}

	if server.redis != nil {
		checks["redis"] = health.PingFunc(func(ctx context.Context) error {
			return server.redis.Ping(ctx).Err()
		})
	}

	return checks
}
