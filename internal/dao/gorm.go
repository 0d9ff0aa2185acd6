// Package dao 提供数据访问层的初始化和数据库实例管理
// 负责建立 SQLite 连接、自动迁移表结构、初始化 Repository 层
package dao

import (
	"os"
	"path/filepath"

	"github.com/infernocadet/secure-message-chat/internal/config"
	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 确保数据库文件所在目录存在
//  2. 使用 GORM 打开 SQLite 数据库
//  3. 执行 AutoMigrate 自动迁移表结构
//  4. 创建并返回 Repository 实例集合
func Init(conf *config.Config) *repository.Repositories {
	path := conf.DatabaseConfig.Path
	if path == "" {
		path = "database/main.db"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			zap.L().Fatal("create database directory failed", zap.Error(err))
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("open sqlite database failed", zap.Error(err))
	}

	// AutoMigrate 自动迁移表结构
	// 如果表不存在则创建，如果字段变更则更新结构，不会删除已有字段或数据
	err = db.AutoMigrate(
		&model.UserInfo{},      // 用户信息表
		&model.Friend{},        // 好友关系表
		&model.FriendRequest{}, // 好友申请表
		&model.Room{},          // 房间表
		&model.RoomMember{},    // 房间成员表
		&model.Message{},       // 消息表
	)
	if err != nil {
		zap.L().Fatal("auto migrate failed", zap.Error(err))
	}

	return repository.NewRepositories(db)
}
