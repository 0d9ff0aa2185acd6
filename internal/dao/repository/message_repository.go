package repository

import (
	"github.com/infernocadet/secure-message-chat/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 追加一条消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindByRoomUuid 按时间顺序查找房间的全部消息
func (r *messageRepository) FindByRoomUuid(roomUuid string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.
		Where("room_uuid = ?", roomUuid).
		Order("uuid ASC").
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间消息 room_uuid=%s", roomUuid)
	}
	return messages, nil
}
