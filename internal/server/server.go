// Package server 提供 HTTP 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/handler"
	"github.com/infernocadet/secure-message-chat/internal/infrastructure/logger"
	"github.com/infernocadet/secure-message-chat/internal/infrastructure/middleware"
	"github.com/infernocadet/secure-message-chat/internal/router"
)

// Init 初始化 HTTP 服务器并返回 Gin 引擎实例
// 不使用 gin.Default()，日志和恢复中间件换成 zap 版本
func Init(handlers *handler.Handlers) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))
	engine.Use(middleware.SecureHeaders())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
