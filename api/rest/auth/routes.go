package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/internal/auth"
)

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, userRepo UserStore) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", RegisterHandler(userRepo))
		authGroup.POST("/login", LoginHandler(userRepo))
		authGroup.POST("/logout", LogoutHandler())
		authGroup.GET("/me", auth.AuthMiddleware(), GetCurrentUserHandler(userRepo))
		authGroup.GET("/:provider", BeginAuthHandler())
		authGroup.GET("/:provider/callback", CallbackHandler(userRepo))
	}
}
