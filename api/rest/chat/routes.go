package chat

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/auth"
)

// registers chat and image routes; both accept guests
func RegisterRoutes(router *gin.RouterGroup, svc Service, resolver *actor.Resolver) {
	router.POST("/chat", auth.OptionalAuthMiddleware(), ChatHandler(svc, resolver))
	router.POST("/images", auth.OptionalAuthMiddleware(), ImageHandler(svc, resolver))
}
