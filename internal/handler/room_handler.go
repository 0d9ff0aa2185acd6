// 本文件处理房间和历史消息相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/infernocadet/secure-message-chat/internal/service"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
)

type RoomHandler struct {
	roomService service.RoomService
}

func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// List 查询当前用户的持久房间列表
// GET /room/list
func (h *RoomHandler) List(c *gin.Context) {
	username := c.GetString("username")
	list, err := h.roomService.GetRoomList(username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}

// Messages 查询房间历史消息
// GET /room/messages?room_id=xxx
func (h *RoomHandler) Messages(c *gin.Context) {
	roomID := c.Query("room_id")
	if roomID == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "room_id 不能为空"))
		return
	}
	username := c.GetString("username")
	list, err := h.roomService.GetMessageList(username, roomID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}
