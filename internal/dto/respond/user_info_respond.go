package respond

// UserInfoRespond 用户信息响应
type UserInfoRespond struct {
	Username  string `json:"username"`
	Role      int8   `json:"role"`
	PublicKey string `json:"public_key"`
}
