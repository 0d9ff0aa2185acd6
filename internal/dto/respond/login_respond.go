package respond

// LoginRespond 登录响应
type LoginRespond struct {
	Username     string `json:"username"`
	Role         int8   `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
