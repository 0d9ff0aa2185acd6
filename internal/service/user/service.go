// Package user 实现用户注册、登录和资料管理
package user

import (
	"go.uber.org/zap"

	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/dto/request"
	"github.com/infernocadet/secure-message-chat/internal/dto/respond"
	"github.com/infernocadet/secure-message-chat/internal/model"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
	"github.com/infernocadet/secure-message-chat/pkg/util/jwt"
)

type Service struct {
	users repository.UserRepository
}

func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// Register 注册新用户
// 用户名已存在时返回 CodeUserExist；密码哈希由模型的 BeforeSave 钩子完成
func (s *Service) Register(req *request.RegisterRequest) (*respond.RegisterRespond, error) {
	if _, err := s.users.FindByUsername(req.Username); err == nil {
		return nil, errorx.Newf(errorx.CodeUserExist, "用户 %s 已存在", req.Username)
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	u := &model.UserInfo{
		Username:    req.Username,
		RawPassword: req.Password,
		Role:        req.Role,
		PublicKey:   req.PublicKey,
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}

	accessToken, err := jwt.GenerateAccessToken(u.Username)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发令牌失败")
	}
	refreshToken, _, err := jwt.GenerateRefreshToken(u.Username)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发令牌失败")
	}
	zap.L().Info("用户注册成功", zap.String("username", u.Username))
	return &respond.RegisterRespond{
		Username:     u.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login 校验用户名密码并签发令牌
func (s *Service) Login(req *request.LoginRequest) (*respond.LoginRespond, error) {
	u, err := s.users.FindByUsername(req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, err
	}
	if !u.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码错误")
	}

	accessToken, err := jwt.GenerateAccessToken(u.Username)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发令牌失败")
	}
	refreshToken, _, err := jwt.GenerateRefreshToken(u.Username)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发令牌失败")
	}
	zap.L().Info("用户登录成功", zap.String("username", u.Username))
	return &respond.LoginRespond{
		Username:     u.Username,
		Role:         u.Role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken 校验 Refresh Token 并签发新的 Access Token
// 只有携带 TokenID 的令牌才是 Refresh Token，Access Token 不能用来刷新
func (s *Service) RefreshToken(refreshToken string) (string, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeUnauthorized, "无效的刷新令牌")
	}
	if claims.Subject != "refresh_token" || claims.TokenID == "" {
		return "", errorx.New(errorx.CodeUnauthorized, "无效的刷新令牌")
	}
	if _, err := s.users.FindByUsername(claims.Username); err != nil {
		return "", errorx.New(errorx.CodeUnauthorized, "无效的刷新令牌")
	}
	return jwt.GenerateAccessToken(claims.Username)
}

// GetUserInfo 查询用户资料
func (s *Service) GetUserInfo(username string) (*respond.UserInfoRespond, error) {
	u, err := s.users.FindByUsername(username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeUserNotExist, "用户 %s 不存在", username)
		}
		return nil, err
	}
	return &respond.UserInfoRespond{
		Username:  u.Username,
		Role:      u.Role,
		PublicKey: u.PublicKey,
	}, nil
}

// GetPublicKey 查询用户公钥
func (s *Service) GetPublicKey(username string) (string, error) {
	u, err := s.users.FindByUsername(username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return "", errorx.Newf(errorx.CodeUserNotExist, "用户 %s 不存在", username)
		}
		return "", err
	}
	return u.PublicKey, nil
}

// UpdatePublicKey 更新当前用户的公钥
func (s *Service) UpdatePublicKey(username, publicKey string) error {
	return s.users.UpdatePublicKey(username, publicKey)
}
