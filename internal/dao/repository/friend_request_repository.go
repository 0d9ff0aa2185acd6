package repository

import (
	"github.com/infernocadet/secure-message-chat/internal/model"

	"gorm.io/gorm"
)

type friendRequestRepository struct {
	db *gorm.DB
}

// NewFriendRequestRepository 创建好友申请 Repository
func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

// FindByID 根据主键查找申请
func (r *friendRequestRepository) FindByID(id uint) (*model.FriendRequest, error) {
	var request model.FriendRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友申请 id=%d", id)
	}
	return &request, nil
}

// FindPendingBetween 查找两人之间的待处理申请（不区分方向）
// 用于保证同一对用户最多只有一条待处理申请
func (r *friendRequestRepository) FindPendingBetween(a, b string) (*model.FriendRequest, error) {
	var request model.FriendRequest
	if err := r.db.
		Where("status = ? AND ((sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?))",
			model.FriendRequestPending, a, b, b, a).
		First(&request).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询待处理申请 %s-%s", a, b)
	}
	return &request, nil
}

// FindPendingByReceiver 查找用户收到的待处理申请
func (r *friendRequestRepository) FindPendingByReceiver(receiver string) ([]model.FriendRequest, error) {
	var requests []model.FriendRequest
	if err := r.db.
		Where("receiver = ? AND status = ?", receiver, model.FriendRequestPending).
		Find(&requests).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询收到的申请 receiver=%s", receiver)
	}
	return requests, nil
}

// FindPendingBySender 查找用户发出的待处理申请
func (r *friendRequestRepository) FindPendingBySender(sender string) ([]model.FriendRequest, error) {
	var requests []model.FriendRequest
	if err := r.db.
		Where("sender = ? AND status = ?", sender, model.FriendRequestPending).
		Find(&requests).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询发出的申请 sender=%s", sender)
	}
	return requests, nil
}

// Create 创建新申请
func (r *friendRequestRepository) Create(request *model.FriendRequest) error {
	if err := r.db.Create(request).Error; err != nil {
		return wrapDBError(err, "创建好友申请")
	}
	return nil
}

// UpdateStatus 更新申请状态
func (r *friendRequestRepository) UpdateStatus(id uint, status int8) error {
	if err := r.db.Model(&model.FriendRequest{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return wrapDBErrorf(err, "更新申请状态 id=%d", id)
	}
	return nil
}

// Accept 通过申请
// 在同一事务内建立双向好友关系并删除申请记录，保证两个操作的原子性
func (r *friendRequestRepository) Accept(request *model.FriendRequest) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.Friend{
			Username:       request.Sender,
			FriendUsername: request.Receiver,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.Friend{
			Username:       request.Receiver,
			FriendUsername: request.Sender,
		}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.FriendRequest{}, request.ID).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "通过好友申请 id=%d", request.ID)
	}
	return nil
}
