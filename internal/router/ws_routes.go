package router

import (
	"github.com/gin-gonic/gin"
)

// registerWebSocketRoutes 注册 WebSocket 路由
// 令牌在 Serve 内部从查询参数校验，不经过 JWTAuth 中间件
func (rt *Router) registerWebSocketRoutes(r *gin.Engine) {
	r.GET("/ws", rt.handlers.Ws.Serve)
}
