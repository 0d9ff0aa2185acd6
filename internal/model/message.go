package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Message 消息模型
// 对应数据库 message 表，按房间存储聊天消息
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 使用雪花算法生成的 int64 类型 ID
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// RoomUuid 房间 UUID
	// 关联到 Room 表，标识消息属于哪个房间
	RoomUuid string `gorm:"column:room_uuid;index;type:char(24);not null;comment:房间uuid"`

	// Sender 发送者用户名
	Sender string `gorm:"column:sender;index;type:varchar(32);not null;comment:发送者用户名"`

	// Content 消息内容
	// 已经过服务端净化，不包含可执行标记
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// SendAt 发送时间
	SendAt sql.NullTime `gorm:"column:send_at;comment:发送时间"`
}

func (Message) TableName() string {
	return "message"
}
