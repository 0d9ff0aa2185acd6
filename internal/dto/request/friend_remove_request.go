package request

// FriendRemoveRequest 删除好友请求
type FriendRemoveRequest struct {
	Username string `json:"username" binding:"required"`
}
