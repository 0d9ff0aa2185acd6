package request

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=32,alphanum"`
	Password  string `json:"password" binding:"required,min=6,max=64"`
	PublicKey string `json:"public_key"`
	Role      int8   `json:"role" binding:"gte=0,lte=3"`
}
