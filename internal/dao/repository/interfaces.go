// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"github.com/infernocadet/secure-message-chat/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*model.UserInfo, error)
	// FindByUsernames 批量根据用户名查找用户
	FindByUsernames(usernames []string) ([]model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
	// UpdatePublicKey 更新用户公钥
	UpdatePublicKey(username, publicKey string) error
}

// FriendRepository 好友关系数据访问接口
// 好友关系始终成对存在，创建和删除都是双向原子操作
type FriendRepository interface {
	// Exists 判断两人是否互为好友
	Exists(username, friendUsername string) (bool, error)
	// FindFriendUsernames 查找用户的全部好友用户名
	FindFriendUsernames(username string) ([]string, error)
	// CreateBidirectional 在同一事务内写入两个方向的好友关系
	CreateBidirectional(username, friendUsername string) error
	// DeleteBidirectional 在同一事务内删除两个方向的好友关系
	DeleteBidirectional(username, friendUsername string) error
}

// FriendRequestRepository 好友申请数据访问接口
type FriendRequestRepository interface {
	// FindByID 根据主键查找申请
	FindByID(id uint) (*model.FriendRequest, error)
	// FindPendingBetween 查找两人之间的待处理申请（不区分方向）
	FindPendingBetween(a, b string) (*model.FriendRequest, error)
	// FindPendingByReceiver 查找用户收到的待处理申请
	FindPendingByReceiver(receiver string) ([]model.FriendRequest, error)
	// FindPendingBySender 查找用户发出的待处理申请
	FindPendingBySender(sender string) ([]model.FriendRequest, error)
	// Create 创建新申请
	Create(request *model.FriendRequest) error
	// UpdateStatus 更新申请状态
	UpdateStatus(id uint, status int8) error
	// Accept 通过申请：在同一事务内建立双向好友关系并删除申请记录
	Accept(request *model.FriendRequest) error
}

// RoomRepository 房间数据访问接口
// 房间由参与者集合唯一确定，只创建不删除
type RoomRepository interface {
	// FindByParticipantSet 根据参与者集合查找房间（与顺序无关）
	FindByParticipantSet(usernames []string) (*model.Room, error)
	// Create 创建房间并持久化成员集合（同一事务）
	Create(name string, usernames []string) (*model.Room, error)
	// FindByUuid 根据 UUID 查找房间
	FindByUuid(uuid string) (*model.Room, error)
	// FindRoomsByUsername 查找用户所在的全部房间
	FindRoomsByUsername(username string) ([]model.Room, error)
	// FindMemberUsernames 查找房间的持久成员用户名
	FindMemberUsernames(roomUuid string) ([]string, error)
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 追加一条消息
	Create(message *model.Message) error
	// FindByRoomUuid 按时间顺序查找房间的全部消息
	FindByRoomUuid(roomUuid string) ([]model.Message, error)
}

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问各个 Repository
type Repositories struct {
	User          UserRepository
	Friend        FriendRepository
	FriendRequest FriendRequestRepository
	Room          RoomRepository
	Message       MessageRepository
}

// NewRepositories 创建 Repository 聚合实例，注入数据库连接
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Friend:        NewFriendRepository(db),
		FriendRequest: NewFriendRequestRepository(db),
		Room:          NewRoomRepository(db),
		Message:       NewMessageRepository(db),
	}
}
