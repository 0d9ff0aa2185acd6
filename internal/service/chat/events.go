// Package chat 实现实时聊天核心：会话目录、房间注册表、配对协议、
// 在线状态广播和消息中继
// events.go 定义 WebSocket 事件模型和入站事件分发表
package chat

import (
	"encoding/json"
	"fmt"
)

// EventKind 入站事件类型（封闭枚举）
// 入站事件通过 dispatchTable 分发，新增事件必须同时登记事件名和处理函数
type EventKind uint8

const (
	EventRequestJoin EventKind = iota // 请求与某个用户配对聊天
	EventLeave                        // 离开房间
	EventSend                         // 发送聊天消息
	EventSendEncryptedKey             // 转发端到端加密密钥
)

// 入站事件名 -> 事件类型
var inboundEvents = map[string]EventKind{
	"requestJoin":      EventRequestJoin,
	"leave":            EventLeave,
	"send":             EventSend,
	"sendEncryptedKey": EventSendEncryptedKey,
}

// 出站事件名
const (
	EvtWaiting                  = "waiting"
	EvtRoomReady                = "roomReady"
	EvtIncoming                 = "incoming"
	EvtFriendOnline             = "friendOnline"
	EvtFriendOffline            = "friendOffline"
	EvtReceiveEncryptedKey      = "receiveEncryptedKey"
	EvtUpdateFriendRequests     = "updateFriendRequests"
	EvtUpdateSentRequests       = "updateSentRequests"
	EvtUpdateFriendsList        = "updateFriendsList"
	EvtUpdateSentRequestsStatus = "updateSentRequestsStatus"
	EvtLogout                   = "logout"
	EvtError                    = "error"
)

// Frame 出站事件帧
type Frame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// InboundFrame 入站事件帧，payload 延迟解析
type InboundFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// ==================== 事件负载 ====================

// RequestJoinPayload 配对请求
type RequestJoinPayload struct {
	Peer string `json:"peer"`
}

// LeavePayload 离开房间
type LeavePayload struct {
	RoomID string `json:"room_id"`
}

// SendPayload 发送聊天消息
type SendPayload struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

// EncryptedKeyPayload 加密密钥转发
type EncryptedKeyPayload struct {
	RoomID       string `json:"room_id"`
	Sender       string `json:"sender,omitempty"`
	EncryptedKey string `json:"encrypted_key"`
}

// WaitingPayload 房间已分配，等待对端加入
type WaitingPayload struct {
	RoomID string `json:"room_id"`
	Peer   string `json:"peer"`
}

// RoomReadyPayload 双方均已加入，可以开始密钥交换握手
// Initiator 始终是最先发起配对的一方
type RoomReadyPayload struct {
	RoomID    string `json:"room_id"`
	Initiator string `json:"initiator"`
	Peer      string `json:"peer"`
}

// IncomingPayload 聊天消息或房间内通知
// 聊天消息携带 Sender；通知消息携带 Color（green/red）
type IncomingPayload struct {
	Sender  string `json:"sender,omitempty"`
	Message string `json:"message"`
	Color   string `json:"color,omitempty"`
}

// PresencePayload 好友上线/下线通知
type PresencePayload struct {
	Username string `json:"username"`
}

// FriendRequestPayload 好友申请推送
type FriendRequestPayload struct {
	RequestID uint   `json:"request_id"`
	Sender    string `json:"sender,omitempty"`
	Receiver  string `json:"receiver,omitempty"`
}

// FriendsListPayload 好友列表变更推送
type FriendsListPayload struct {
	NewFriend     string `json:"new_friend,omitempty"`
	RemovedFriend string `json:"removed_friend,omitempty"`
}

// RequestStatusPayload 发出的申请状态变更推送
type RequestStatusPayload struct {
	RequestID uint   `json:"request_id"`
	NewStatus string `json:"new_status"`
}

// ErrorPayload 非致命错误，原样返回给请求方连接
type ErrorPayload struct {
	Message string `json:"message"`
}

// inboundHandler 入站事件处理函数
type inboundHandler func(h *Hub, c Conn, username string, payload json.RawMessage) error

// dispatchTable 入站事件分发表
var dispatchTable = map[EventKind]inboundHandler{
	EventRequestJoin:      handleRequestJoin,
	EventLeave:            handleLeave,
	EventSend:             handleSend,
	EventSendEncryptedKey: handleSendEncryptedKey,
}

// HandleFrame 解析入站帧并分发到对应的处理函数
// 处理失败时向请求方连接回发 error 事件，连接不会因配对错误被关闭
func (h *Hub) HandleFrame(c Conn, username string, raw []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.Push(Frame{Event: EvtError, Payload: ErrorPayload{Message: "malformed frame"}})
		return
	}
	kind, ok := inboundEvents[frame.Event]
	if !ok {
		c.Push(Frame{Event: EvtError, Payload: ErrorPayload{Message: fmt.Sprintf("unknown event %q", frame.Event)}})
		return
	}
	if err := dispatchTable[kind](h, c, username, frame.Payload); err != nil {
		c.Push(Frame{Event: EvtError, Payload: ErrorPayload{Message: err.Error()}})
	}
}

func handleRequestJoin(h *Hub, c Conn, username string, payload json.RawMessage) error {
	var p RequestJoinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("malformed requestJoin payload")
	}
	_, err := h.RequestJoin(username, c, p.Peer)
	return err
}

func handleLeave(h *Hub, c Conn, username string, payload json.RawMessage) error {
	var p LeavePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("malformed leave payload")
	}
	h.Leave(username, p.RoomID)
	return nil
}

func handleSend(h *Hub, c Conn, username string, payload json.RawMessage) error {
	var p SendPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("malformed send payload")
	}
	return h.Send(username, p.RoomID, p.Message)
}

func handleSendEncryptedKey(h *Hub, c Conn, username string, payload json.RawMessage) error {
	var p EncryptedKeyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("malformed sendEncryptedKey payload")
	}
	h.RelayEncryptedKey(username, p.RoomID, p.EncryptedKey)
	return nil
}
