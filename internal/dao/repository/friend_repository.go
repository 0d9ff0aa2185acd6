package repository

import (
	"errors"

	"github.com/infernocadet/secure-message-chat/internal/model"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"

	"gorm.io/gorm"
)

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository 创建好友关系 Repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

// Exists 判断两人是否互为好友
// 好友关系双向写入，查任意一个方向即可
func (r *friendRepository) Exists(username, friendUsername string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Friend{}).
		Where("username = ? AND friend_username = ?", username, friendUsername).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询好友关系 %s-%s", username, friendUsername)
	}
	return count > 0, nil
}

// FindFriendUsernames 查找用户的全部好友用户名
func (r *friendRepository) FindFriendUsernames(username string) ([]string, error) {
	var friends []string
	if err := r.db.Model(&model.Friend{}).
		Where("username = ?", username).
		Pluck("friend_username", &friends).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友列表 username=%s", username)
	}
	return friends, nil
}

// CreateBidirectional 在同一事务内写入两个方向的好友关系
// 任何时刻都不允许观察到单向的好友关系
func (r *friendRepository) CreateBidirectional(username, friendUsername string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.Friend{Username: username, FriendUsername: friendUsername}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Friend{Username: friendUsername, FriendUsername: username}).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "创建好友关系 %s-%s", username, friendUsername)
	}
	return nil
}

// DeleteBidirectional 在同一事务内删除两个方向的好友关系
// 两人不是好友时返回 CodeNotFound
func (r *friendRepository) DeleteBidirectional(username, friendUsername string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().
			Where("username = ? AND friend_username = ?", username, friendUsername).
			Delete(&model.Friend{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Unscoped().
			Where("username = ? AND friend_username = ?", friendUsername, username).
			Delete(&model.Friend{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.Wrapf(err, errorx.CodeNotFound, "好友关系不存在 %s-%s", username, friendUsername)
		}
		return wrapDBErrorf(err, "删除好友关系 %s-%s", username, friendUsername)
	}
	return nil
}
