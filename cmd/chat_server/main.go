package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/infernocadet/secure-message-chat/internal/config"
	"github.com/infernocadet/secure-message-chat/internal/dao"
	myredis "github.com/infernocadet/secure-message-chat/internal/dao/redis"
	"github.com/infernocadet/secure-message-chat/internal/handler"
	"github.com/infernocadet/secure-message-chat/internal/infrastructure/logger"
	"github.com/infernocadet/secure-message-chat/internal/server"
	"github.com/infernocadet/secure-message-chat/internal/service"
	"github.com/infernocadet/secure-message-chat/internal/service/chat"
	"github.com/infernocadet/secure-message-chat/pkg/util/jwt"
	"github.com/infernocadet/secure-message-chat/pkg/util/snowflake"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos := dao.Init(conf)
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	cache := myredis.Init(&conf.RedisConfig)
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花 id
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 6. 初始化翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}

	// 7. 依赖注入：聊天中枢 -> Service 层 -> Handler 层
	hub := chat.NewHub(repos)
	services := service.NewServices(repos, cache, hub)
	handlers := handler.NewHandlers(services)
	zap.L().Info("Service 层初始化成功")

	// 8. 启动 HTTP 服务器
	engine := server.Init(handlers)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务器启动成功",
		zap.String("host", conf.MainConfig.Host), zap.Int("port", conf.MainConfig.Port))

	// 设置信号监听，等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("服务器关闭异常", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
