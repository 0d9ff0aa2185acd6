package repository

import (
	"github.com/infernocadet/secure-message-chat/internal/model"
	"github.com/infernocadet/secure-message-chat/pkg/util/snowflake"

	"gorm.io/gorm"
)

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间 Repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// FindByParticipantSet 根据参与者集合查找房间
// 参与者集合键经过排序后拼接，与调用方传入的顺序无关
func (r *roomRepository) FindByParticipantSet(usernames []string) (*model.Room, error) {
	key := model.ParticipantKey(usernames)
	var room model.Room
	if err := r.db.First(&room, "participant_key = ?", key).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间 participant_key=%s", key)
	}
	return &room, nil
}

// Create 创建房间并持久化成员集合
// participant_key 上的唯一索引保证并发创建同一参与者集合时只有一个事务成功，
// 调用方应在创建冲突后重新查找一次
func (r *roomRepository) Create(name string, usernames []string) (*model.Room, error) {
	room := &model.Room{
		Uuid:           "R" + snowflake.GenerateIDString(),
		Name:           name,
		ParticipantKey: model.ParticipantKey(usernames),
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		for _, username := range usernames {
			if err := tx.Create(&model.RoomMember{
				RoomUuid: room.Uuid,
				Username: username,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapDBError(err, "创建房间")
	}
	return room, nil
}

// FindByUuid 根据 UUID 查找房间
func (r *roomRepository) FindByUuid(uuid string) (*model.Room, error) {
	var room model.Room
	if err := r.db.First(&room, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间 uuid=%s", uuid)
	}
	return &room, nil
}

// FindRoomsByUsername 查找用户所在的全部房间
func (r *roomRepository) FindRoomsByUsername(username string) ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.
		Joins("JOIN room_member ON room_member.room_uuid = room.uuid").
		Where("room_member.username = ?", username).
		Find(&rooms).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户房间列表 username=%s", username)
	}
	return rooms, nil
}

// FindMemberUsernames 查找房间的持久成员用户名
func (r *roomRepository) FindMemberUsernames(roomUuid string) ([]string, error) {
	var usernames []string
	if err := r.db.Model(&model.RoomMember{}).
		Where("room_uuid = ?", roomUuid).
		Pluck("username", &usernames).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间成员 room_uuid=%s", roomUuid)
	}
	return usernames, nil
}
