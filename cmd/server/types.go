package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/config"
	"codeberg.org/kartuli/server/internal/quota"
	ws "codeberg.org/kartuli/server/internal/websocket"
	"codeberg.org/kartuli/server/kartuli/payments"
	"codeberg.org/kartuli/server/kartuli/users"
)

// holds all dependencies and state for the API server
type Server struct {
	db          *pgxpool.Pool
	redis       *redis.Client
	config      *config.Config
	userRepo    *users.Repository
	paymentRepo *payments.Repository
	gate        *quota.Gate
	resolver    *actor.Resolver
	services    *Services
	hub         *ws.Hub
	router      *gin.Engine
}
