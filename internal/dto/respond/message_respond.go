package respond

// MessageRespond 历史消息条目
// ID 是雪花 id 的十进制字符串，避免前端 JSON 精度丢失
type MessageRespond struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	SendAt  string `json:"send_at"`
}
