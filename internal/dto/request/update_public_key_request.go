package request

// UpdatePublicKeyRequest 更新用户公钥请求
type UpdatePublicKeyRequest struct {
	PublicKey string `json:"public_key" binding:"required"`
}
