package model

import (
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Room 聊天房间模型
// 房间由参与者集合唯一确定：participant_key 为参与者用户名排序后用 '|' 连接，
// 其上的唯一索引保证并发的"查找或创建"不会产生重复房间。
// 本子系统只创建房间，从不删除（历史保留）
type Room struct {
	gorm.Model

	// Uuid 房间唯一标识
	// 格式：R + 雪花ID字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(24);not null;comment:房间uuid"`

	// Name 房间显示名称（可选）
	Name string `gorm:"column:name;type:varchar(64);comment:房间名称"`

	// ParticipantKey 参与者集合键
	// 排序后的参与者用户名用 '|' 连接，与顺序无关
	ParticipantKey string `gorm:"column:participant_key;uniqueIndex;type:varchar(128);not null;comment:参与者集合键"`
}

func (Room) TableName() string {
	return "room"
}

// RoomMember 房间成员模型
// 记录房间的持久成员集合，瞬时的"已加入"状态由内存中的 Room Registry 维护
type RoomMember struct {
	gorm.Model
	RoomUuid string `gorm:"column:room_uuid;index;uniqueIndex:idx_room_member;type:char(24);not null;comment:房间uuid"`
	Username string `gorm:"column:username;index;uniqueIndex:idx_room_member;type:varchar(32);not null;comment:成员用户名"`
}

func (RoomMember) TableName() string {
	return "room_member"
}

// ParticipantKey 计算参与者集合键
// 对用户名排序后拼接，保证 {A,B} 与 {B,A} 得到相同的键
func ParticipantKey(usernames []string) string {
	sorted := make([]string, len(usernames))
	copy(sorted, usernames)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
