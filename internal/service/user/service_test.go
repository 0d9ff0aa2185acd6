package user

import (
	"os"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/dto/request"
	"github.com/infernocadet/secure-message-chat/internal/model"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
	"github.com/infernocadet/secure-message-chat/pkg/util/jwt"
)

func TestMain(m *testing.M) {
	jwt.Init("test-secret-test-secret-test-secret", 30, 168)
	os.Exit(m.Run())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.UserInfo{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewService(repository.NewRepositories(db).User)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	rsp, err := svc.Register(&request.RegisterRequest{
		Username:  "alice",
		Password:  "secret-password",
		PublicKey: "pem-data",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if rsp.AccessToken == "" || rsp.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued")
	}

	// 重复注册被拒
	if _, err := svc.Register(&request.RegisterRequest{Username: "alice", Password: "x"}); errorx.GetCode(err) != errorx.CodeUserExist {
		t.Fatalf("expected CodeUserExist, got %v", err)
	}

	login, err := svc.Login(&request.LoginRequest{Username: "alice", Password: "secret-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Username != "alice" {
		t.Fatalf("unexpected login respond: %+v", login)
	}

	if _, err := svc.Login(&request.LoginRequest{Username: "alice", Password: "wrong"}); errorx.GetCode(err) != errorx.CodeInvalidPassword {
		t.Fatalf("expected CodeInvalidPassword, got %v", err)
	}
	if _, err := svc.Login(&request.LoginRequest{Username: "ghost", Password: "x"}); errorx.GetCode(err) != errorx.CodeUserNotExist {
		t.Fatalf("expected CodeUserNotExist, got %v", err)
	}

	// 密码只存哈希
	info, err := svc.GetUserInfo("alice")
	if err != nil {
		t.Fatalf("get user info: %v", err)
	}
	if info.PublicKey != "pem-data" {
		t.Fatalf("unexpected public key: %q", info.PublicKey)
	}
}

func TestRefreshTokenRequiresRefreshToken(t *testing.T) {
	svc := newTestService(t)

	rsp, err := svc.Register(&request.RegisterRequest{Username: "alice", Password: "secret-password"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	accessToken, err := svc.RefreshToken(rsp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if accessToken == "" {
		t.Fatalf("expected a new access token")
	}

	// Access Token 不能用来刷新
	if _, err := svc.RefreshToken(rsp.AccessToken); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("expected CodeUnauthorized, got %v", err)
	}
	if _, err := svc.RefreshToken("garbage"); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("expected CodeUnauthorized for garbage token, got %v", err)
	}
}

func TestUpdatePublicKey(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register(&request.RegisterRequest{Username: "alice", Password: "secret-password"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.UpdatePublicKey("alice", "new-pem"); err != nil {
		t.Fatalf("update public key: %v", err)
	}
	key, err := svc.GetPublicKey("alice")
	if err != nil {
		t.Fatalf("get public key: %v", err)
	}
	if key != "new-pem" {
		t.Fatalf("expected new-pem, got %q", key)
	}
}
