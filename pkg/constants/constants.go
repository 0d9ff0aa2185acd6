package constants

const (
	CHANNEL_SIZE               = 100 // 连接发送缓冲通道大小
	MESSAGE_MAX_LENGTH         = 500 // 单条消息最大长度
	REDIS_TIMEOUT              = 30  // redis 缓存超时 (分钟)
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
)
