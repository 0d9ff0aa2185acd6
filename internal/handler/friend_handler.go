// 本文件处理好友关系相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/dto/request"
	"github.com/infernocadet/secure-message-chat/internal/service"
)

type FriendHandler struct {
	friendService service.FriendService
}

func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// List 查询好友列表（带在线状态）
// GET /friend/list
func (h *FriendHandler) List(c *gin.Context) {
	username := c.GetString("username")
	list, err := h.friendService.GetFriendList(c.Request.Context(), username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}

// Requests 查询收到和发出的待处理好友申请
// GET /friend/requests
func (h *FriendHandler) Requests(c *gin.Context) {
	username := c.GetString("username")
	rsp, err := h.friendService.GetFriendRequests(username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Apply 发起好友申请
// POST /friend/apply
func (h *FriendHandler) Apply(c *gin.Context) {
	var req request.FriendApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	requestID, err := h.friendService.Apply(c.Request.Context(), username, req.Username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"request_id": requestID,
	})
}

// Accept 通过好友申请
// POST /friend/accept
func (h *FriendHandler) Accept(c *gin.Context) {
	var req request.FriendHandleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	newFriend, err := h.friendService.Accept(c.Request.Context(), username, req.RequestID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"new_friend": newFriend,
	})
}

// Reject 拒绝好友申请
// POST /friend/reject
func (h *FriendHandler) Reject(c *gin.Context) {
	var req request.FriendHandleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	if err := h.friendService.Reject(username, req.RequestID); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Remove 删除好友
// POST /friend/remove
func (h *FriendHandler) Remove(c *gin.Context) {
	var req request.FriendRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	if err := h.friendService.Remove(c.Request.Context(), username, req.Username); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
