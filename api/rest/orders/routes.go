package orders

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/storefront/orders"
)

func RegisterRoutes(router *gin.RouterGroup, orderRepo *orders.Repository) {
	ordersGroup := router.Group("/orders")
	ordersGroup.Use(auth.AuthMiddleware())
	{
		ordersGroup.POST("", CreateOrderHandler(orderRepo))
		ordersGroup.GET("", ListOrdersHandler(orderRepo))
		ordersGroup.GET("/:id", GetOrderHandler(orderRepo))
		ordersGroup.PATCH("/:id", UpdateOrderHandler(orderRepo))
		ordersGroup.DELETE("/:id", DeleteOrderHandler(orderRepo))
	}
}
