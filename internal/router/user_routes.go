package router

import (
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/infrastructure/middleware"
)

// registerUserRoutes 注册用户相关路由
func (rt *Router) registerUserRoutes(r *gin.Engine) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.JWTAuth())
	{
		userGroup.GET("/info", rt.handlers.User.GetUserInfo)
		userGroup.GET("/public_key", rt.handlers.User.GetPublicKey)
		userGroup.POST("/public_key", rt.handlers.User.UpdatePublicKey)
	}
}
