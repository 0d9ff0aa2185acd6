package repository

import (
	"github.com/infernocadet/secure-message-chat/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUsername 根据用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindByUsernames 批量根据用户名查找用户
func (r *userRepository) FindByUsernames(usernames []string) ([]model.UserInfo, error) {
	if len(usernames) == 0 {
		return []model.UserInfo{}, nil
	}
	var users []model.UserInfo
	if err := r.db.Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// Create 创建新用户
func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// UpdatePublicKey 更新用户公钥
func (r *userRepository) UpdatePublicKey(username, publicKey string) error {
	if err := r.db.Model(&model.UserInfo{}).Where("username = ?", username).Update("public_key", publicKey).Error; err != nil {
		return wrapDBErrorf(err, "更新公钥 username=%s", username)
	}
	return nil
}
