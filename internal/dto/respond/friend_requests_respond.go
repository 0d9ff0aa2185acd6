package respond

// IncomingRequestRespond 收到的好友申请条目
type IncomingRequestRespond struct {
	RequestID uint   `json:"request_id"`
	Sender    string `json:"sender"`
}

// SentRequestRespond 发出的好友申请条目
type SentRequestRespond struct {
	RequestID uint   `json:"request_id"`
	Receiver  string `json:"receiver"`
}

// FriendRequestsRespond 好友申请列表响应，收到和发出的待处理申请各一组
type FriendRequestsRespond struct {
	Incoming []IncomingRequestRespond `json:"incoming"`
	Sent     []SentRequestRespond     `json:"sent"`
}
