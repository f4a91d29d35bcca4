package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/auth"
	"codeberg.org/kartuli/server/internal/config"
	ws "codeberg.org/kartuli/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, resolver *actor.Resolver, cfg *config.Config) {
	upgrader := newUpgrader(cfg.AllowedOrigins, cfg.IsProduction())

	router.GET("/ws/chat", queryToken(), auth.OptionalAuthMiddleware(), ChatSocketHandler(hub, resolver, upgrader))
}
