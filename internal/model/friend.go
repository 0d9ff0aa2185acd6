package model

import (
	"gorm.io/gorm"
)

// Friend 好友关系模型
// 好友关系是对称的：A 加 B 为好友时必须在同一事务内写入 (A,B) 和 (B,A) 两行，
// 删除时同理，任何时刻都不允许观察到单向的好友关系
type Friend struct {
	gorm.Model
	Username       string `gorm:"column:username;index;uniqueIndex:idx_friend_pair;type:varchar(32);not null;comment:用户名"`
	FriendUsername string `gorm:"column:friend_username;index;uniqueIndex:idx_friend_pair;type:varchar(32);not null;comment:好友用户名"`
}

func (Friend) TableName() string {
	return "friend"
}
