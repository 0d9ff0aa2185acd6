package router

import (
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/infrastructure/middleware"
)

// registerFriendRoutes 注册好友相关路由
func (rt *Router) registerFriendRoutes(r *gin.Engine) {
	friendGroup := r.Group("/friend")
	friendGroup.Use(middleware.JWTAuth())
	{
		friendGroup.GET("/list", rt.handlers.Friend.List)
		friendGroup.GET("/requests", rt.handlers.Friend.Requests)
		friendGroup.POST("/apply", rt.handlers.Friend.Apply)
		friendGroup.POST("/accept", rt.handlers.Friend.Accept)
		friendGroup.POST("/reject", rt.handlers.Friend.Reject)
		friendGroup.POST("/remove", rt.handlers.Friend.Remove)
	}
}
