package model

import (
	"gorm.io/gorm"
)

// 好友申请状态
const (
	FriendRequestPending  int8 = 0 // 申请中
	FriendRequestAccepted int8 = 1 // 已通过
	FriendRequestRejected int8 = 2 // 已拒绝
)

// FriendRequest 好友申请模型
// 同一对用户（不区分方向）最多存在一条待处理申请；
// 申请通过时在同一事务内建立双向好友关系并删除申请记录
type FriendRequest struct {
	gorm.Model
	Sender   string `gorm:"column:sender;index;type:varchar(32);not null;comment:申请人用户名"`
	Receiver string `gorm:"column:receiver;index;type:varchar(32);not null;comment:接收人用户名"`
	Status   int8   `gorm:"column:status;not null;comment:申请状态，0.申请中，1.通过，2.拒绝"`
}

func (FriendRequest) TableName() string {
	return "friend_request"
}
