package router

import (
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/infrastructure/middleware"
)

// registerRoomRoutes 注册房间相关路由
func (rt *Router) registerRoomRoutes(r *gin.Engine) {
	roomGroup := r.Group("/room")
	roomGroup.Use(middleware.JWTAuth())
	{
		roomGroup.GET("/list", rt.handlers.Room.List)
		roomGroup.GET("/messages", rt.handlers.Room.Messages)
	}
}
