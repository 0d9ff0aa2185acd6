// Package service 定义业务服务接口和聚合结构
// Handler 层依赖这些接口，具体实现在各子包中
package service

import (
	"context"

	"github.com/infernocadet/secure-message-chat/internal/dto/request"
	"github.com/infernocadet/secure-message-chat/internal/dto/respond"
)

// UserService 用户认证和资料服务
type UserService interface {
	// Register 注册新用户并签发令牌
	Register(req *request.RegisterRequest) (*respond.RegisterRespond, error)
	// Login 校验凭据并签发令牌
	Login(req *request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 用 Refresh Token 换取新的 Access Token
	RefreshToken(refreshToken string) (string, error)
	// GetUserInfo 查询用户资料
	GetUserInfo(username string) (*respond.UserInfoRespond, error)
	// GetPublicKey 查询用户公钥，供端到端密钥交换使用
	GetPublicKey(username string) (string, error)
	// UpdatePublicKey 更新当前用户的公钥
	UpdatePublicKey(username, publicKey string) error
}

// FriendService 好友关系服务
type FriendService interface {
	// GetFriendList 查询好友列表（带在线状态）
	GetFriendList(ctx context.Context, username string) ([]respond.FriendInfoRespond, error)
	// GetFriendRequests 查询收到和发出的待处理申请
	GetFriendRequests(username string) (*respond.FriendRequestsRespond, error)
	// Apply 发起好友申请并实时推送给接收者
	Apply(ctx context.Context, sender, receiver string) (uint, error)
	// Accept 通过申请：原子建立双向好友关系并推送双方
	Accept(ctx context.Context, receiver string, requestID uint) (string, error)
	// Reject 拒绝申请并推送发送者
	Reject(receiver string, requestID uint) error
	// Remove 删除好友（双向）并推送对方
	Remove(ctx context.Context, username, friendUsername string) error
}

// RoomService 房间和历史消息查询服务
type RoomService interface {
	// GetRoomList 查询用户的持久房间列表
	GetRoomList(username string) ([]respond.RoomRespond, error)
	// GetMessageList 查询房间历史消息，仅房间成员可读
	GetMessageList(username, roomUuid string) ([]respond.MessageRespond, error)
}
