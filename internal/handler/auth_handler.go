// Package handler 提供 HTTP 请求处理器
// 本文件处理认证相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/dto/request"
	"github.com/infernocadet/secure-message-chat/internal/service"
	"github.com/infernocadet/secure-message-chat/internal/service/chat"
)

type AuthHandler struct {
	userService service.UserService
	hub         *chat.Hub
}

func NewAuthHandler(userService service.UserService, hub *chat.Hub) *AuthHandler {
	return &AuthHandler{userService: userService, hub: hub}
}

// Register 注册新用户
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.userService.Register(&req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Login 登录
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	rsp, err := h.userService.Login(&req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Refresh 刷新 Access Token
// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	accessToken, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"access_token": accessToken,
	})
}

// Logout 登出：断开当前 websocket 会话并向好友广播下线
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	username := c.GetString("username")
	h.hub.Logout(username)
	HandleSuccess(c, nil)
}
