package payments

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/internal/auth"
)

// registers payment routes; a nil gateway answers 503 on checkout and callback
func RegisterRoutes(router *gin.RouterGroup, gateway Gateway, orders Orders, plans PlanReader, settings Settings) {
	group := router.Group("/payments")
	{
		group.POST("/checkout", auth.AuthMiddleware(), CheckoutHandler(gateway, orders, plans, settings))
		group.POST("/callback", CallbackHandler(gateway, orders))
		group.GET("/:id", auth.AuthMiddleware(), GetOrderHandler(orders))
	}
}
