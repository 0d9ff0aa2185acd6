// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"github.com/infernocadet/secure-message-chat/internal/service"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth   *AuthHandler
	User   *UserHandler
	Friend *FriendHandler
	Room   *RoomHandler
	Ws     *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:   NewAuthHandler(svc.User, svc.Hub),
		User:   NewUserHandler(svc.User),
		Friend: NewFriendHandler(svc.Friend),
		Room:   NewRoomHandler(svc.Room),
		Ws:     NewWsHandler(svc.Hub),
	}
}
