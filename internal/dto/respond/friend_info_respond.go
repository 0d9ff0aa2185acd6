package respond

// FriendInfoRespond 好友列表条目
type FriendInfoRespond struct {
	Username string `json:"username"`
	Role     int8   `json:"role"`
	Online   bool   `json:"online"`
}
