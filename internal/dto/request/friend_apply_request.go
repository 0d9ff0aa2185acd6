package request

// FriendApplyRequest 发起好友申请请求
type FriendApplyRequest struct {
	Username string `json:"username" binding:"required"`
}
