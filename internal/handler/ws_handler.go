// 本文件处理 websocket 连接升级
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/infernocadet/secure-message-chat/internal/service/chat"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
	"github.com/infernocadet/secure-message-chat/pkg/util/jwt"
)

// 浏览器的 WebSocket API 无法自定义请求头，令牌只能走查询参数
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WsHandler struct {
	hub *chat.Hub
}

func NewWsHandler(hub *chat.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Serve 升级 websocket 连接并登记到聊天中枢
// GET /ws?token=xxx&room_id=xxx
// room_id 非空表示带着房间上下文重连，连接建立后会重新进入该房间
func (h *WsHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "缺少令牌"))
		return
	}
	claims, err := jwt.ParseToken(token)
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "令牌无效或已过期"))
		return
	}
	if claims.Subject != "access_token" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "请使用 Access Token"))
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket 升级失败", zap.String("username", claims.Username), zap.Error(err))
		return
	}

	conn := chat.NewUserConn(h.hub, ws, claims.Username)
	conn.Start()
	h.hub.Connect(claims.Username, c.Query("room_id"), conn)
}
