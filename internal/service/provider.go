package service

import (
	"github.com/infernocadet/secure-message-chat/internal/dao/redis"
	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/service/chat"
	"github.com/infernocadet/secure-message-chat/internal/service/friend"
	"github.com/infernocadet/secure-message-chat/internal/service/room"
	"github.com/infernocadet/secure-message-chat/internal/service/user"
)

// Services 聚合所有业务服务实例
type Services struct {
	User   UserService
	Friend FriendService
	Room   RoomService
	Hub    *chat.Hub
}

// NewServices 创建服务聚合实例，注入仓储、缓存和聊天中枢
func NewServices(repos *repository.Repositories, cache redis.AsyncCacheService, hub *chat.Hub) *Services {
	return &Services{
		User:   user.NewService(repos.User),
		Friend: friend.NewService(repos, cache, hub),
		Room:   room.NewService(repos.Room, repos.Message),
		Hub:    hub,
	}
}
