package usage

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/auth"
)

func RegisterRoutes(rg *gin.RouterGroup, gate Gate, resolver *actor.Resolver) {
	usage := rg.Group("/usage")

	usage.GET("", auth.OptionalAuthMiddleware(), GetUsage(gate, resolver))
	usage.GET("/history", auth.AuthMiddleware(), GetHistory(gate, resolver))
}
