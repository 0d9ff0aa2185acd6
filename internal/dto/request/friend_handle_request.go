package request

// FriendHandleRequest 处理好友申请请求（通过或拒绝）
type FriendHandleRequest struct {
	RequestID uint `json:"request_id" binding:"required"`
}
