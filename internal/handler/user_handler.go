// 本文件处理用户资料相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/dto/request"
	"github.com/infernocadet/secure-message-chat/internal/service"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUserInfo 查询当前用户资料
// GET /user/info
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	username := c.GetString("username")
	rsp, err := h.userService.GetUserInfo(username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// GetPublicKey 查询指定用户的公钥，供端到端密钥交换使用
// GET /user/public_key?username=xxx
func (h *UserHandler) GetPublicKey(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "username 不能为空"))
		return
	}
	publicKey, err := h.userService.GetPublicKey(username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"username":   username,
		"public_key": publicKey,
	})
}

// UpdatePublicKey 更新当前用户的公钥
// POST /user/public_key
func (h *UserHandler) UpdatePublicKey(c *gin.Context) {
	var req request.UpdatePublicKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	if err := h.userService.UpdatePublicKey(username, req.PublicKey); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
