package admin

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, userRepo UserStore, orderRepo OrderStore, gate Gate) {
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(), auth.AdminMiddleware())

	admin.GET("/users", ListUsers(userRepo))
	admin.PUT("/users/:id/plan", SetPlan(userRepo))
	admin.GET("/users/:id/usage", GetUserUsage(userRepo, orderRepo, gate))
	admin.GET("/payments", ListPayments(orderRepo))
	admin.GET("/stats", GetStats(userRepo, orderRepo, gate))
}
