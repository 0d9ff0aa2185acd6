package chat

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/model"
	"github.com/infernocadet/secure-message-chat/pkg/constants"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
	"github.com/infernocadet/secure-message-chat/pkg/util/snowflake"
)

// Hub 聊天中枢，聚合会话目录、房间注册表和在线连接
// 一把互斥锁串行化所有跨结构操作，配对协议的检查和分配不会交错
type Hub struct {
	mu       sync.Mutex
	clients  map[string]Conn // 连接 id -> 连接
	sessions *SessionDirectory
	registry *RoomRegistry

	repos     *repository.Repositories
	sanitizer *bluemonday.Policy
}

func NewHub(repos *repository.Repositories) *Hub {
	return &Hub{
		clients:   make(map[string]Conn),
		sessions:  NewSessionDirectory(),
		registry:  NewRoomRegistry(),
		repos:     repos,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Connect 登记新连接：写入会话目录（覆盖旧会话），可选地重新进入房间，
// 然后向好友广播上线并向自己回灌当前在线的好友
// roomID 非空表示客户端带着房间上下文重连
func (h *Hub) Connect(username, roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID()] = c
	h.sessions.Record(username, c.ID())

	if roomID != "" {
		h.registry.Join(roomID, username)
		h.registry.Subscribe(roomID, c.ID())
		h.emitToRoom(roomID, Frame{Event: EvtIncoming, Payload: IncomingPayload{
			Message: fmt.Sprintf("%s has connected", username),
			Color:   "green",
		}})
	}

	h.announceOnline(username, c)
	zap.L().Info("用户上线", zap.String("username", username), zap.String("conn_id", c.ID()))
}

// Disconnect 按连接 id 清理：反向移除会话目录条目，
// 对每个被移除的用户执行离开房间的清理并向好友广播下线
// 用户已重连时其会话指向新连接，此处不会误伤
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, connID)
	removed := h.sessions.RemoveConn(connID)
	for _, username := range removed {
		if roomID, ok := h.registry.CurrentRoom(username); ok {
			h.emitToRoom(roomID, Frame{Event: EvtIncoming, Payload: IncomingPayload{
				Message: fmt.Sprintf("%s has disconnected", username),
				Color:   "red",
			}})
			h.registry.Unsubscribe(roomID, connID)
			if h.registry.RemoveActive(roomID, username) {
				h.registry.Discard(roomID)
			} else {
				h.registry.ClearCurrent(username)
			}
		}
		h.announceOffline(username)
		zap.L().Info("用户下线", zap.String("username", username), zap.String("conn_id", connID))
	}
}

// RequestJoin 配对协议入口
// 返回分配或加入的房间 id；违反配对前置条件时返回带业务码的错误
func (h *Hub) RequestJoin(username string, c Conn, peer string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if peer == username {
		return "", errorx.New(errorx.CodeInvalidParam, "cannot pair with yourself")
	}
	if _, err := h.repos.User.FindByUsername(peer); err != nil {
		if errorx.IsNotFound(err) {
			return "", errorx.Newf(errorx.CodeUnknownUser, "unknown user %s", peer)
		}
		return "", err
	}

	myRoom, iHave := h.registry.CurrentRoom(username)
	peerRoom, peerHas := h.registry.CurrentRoom(peer)

	// 双方已指向同一房间：要么是发起者重复请求，要么是第二方加入
	if iHave && peerHas && myRoom == peerRoom {
		if h.registry.IsActive(myRoom, username) && h.registry.IsActive(myRoom, peer) {
			return "", errorx.Newf(errorx.CodeAlreadyConnected, "already connected to %s", peer)
		}
		if h.registry.IsActive(myRoom, username) {
			// 发起者重复请求同一对端，静默成功，返回同一房间 id
			h.registry.Subscribe(myRoom, c.ID())
			return myRoom, nil
		}
		// 第二方加入，房间就绪，双方开始密钥交换握手
		h.registry.Join(myRoom, username)
		h.registry.Subscribe(myRoom, c.ID())
		h.emitToRoom(myRoom, Frame{Event: EvtIncoming, Payload: IncomingPayload{
			Message: fmt.Sprintf("%s has joined the room", username),
			Color:   "green",
		}})
		initiator := h.registry.Allocator(myRoom)
		other := peer
		if initiator == peer {
			other = username
		}
		h.emitToRoom(myRoom, Frame{Event: EvtRoomReady, Payload: RoomReadyPayload{
			RoomID:    myRoom,
			Initiator: initiator,
			Peer:      other,
		}})
		return myRoom, nil
	}
	if iHave {
		return "", errorx.New(errorx.CodeAlreadyInRoom, "you are already in another room")
	}
	if peerHas {
		return "", errorx.Newf(errorx.CodeAlreadyInRoom, "%s is already in another room", peer)
	}

	// 双方都空闲：分配房间，发起者先行订阅并进入等待
	room, err := h.lookupOrCreateRoom(username, peer)
	if err != nil {
		return "", err
	}
	h.registry.Assign(room.Uuid, username, peer)
	h.registry.Subscribe(room.Uuid, c.ID())
	c.Push(Frame{Event: EvtWaiting, Payload: WaitingPayload{RoomID: room.Uuid, Peer: peer}})
	h.emitToRoom(room.Uuid, Frame{Event: EvtIncoming, Payload: IncomingPayload{
		Message: fmt.Sprintf("%s has joined the room. Waiting for %s to join", username, peer),
		Color:   "green",
	}})

	// 对端在线时推送配对邀请
	h.notifyLocked(peer, EvtIncoming, IncomingPayload{
		Message: fmt.Sprintf("%s wants to chat with you", username),
		Color:   "green",
	})
	return room.Uuid, nil
}

// lookupOrCreateRoom 按参与者集合查找或创建持久房间
// 参与者集合有唯一索引，并发创建冲突时重试一次查找
func (h *Hub) lookupOrCreateRoom(a, b string) (*model.Room, error) {
	usernames := []string{a, b}
	room, err := h.repos.Room.FindByParticipantSet(usernames)
	if err == nil {
		return room, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}
	room, err = h.repos.Room.Create(fmt.Sprintf("%s & %s", a, b), usernames)
	if err == nil {
		return room, nil
	}
	// 唯一索引冲突说明另一个请求刚创建了同一房间
	room, lookupErr := h.repos.Room.FindByParticipantSet(usernames)
	if lookupErr != nil {
		return nil, err
	}
	return room, nil
}

// Leave 离开房间：广播离开通知，取消订阅并移出活跃集合
// 活跃集合清空时丢弃房间瞬时状态；用户不在该房间时为幂等空操作
func (h *Hub) Leave(username, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.registry.CurrentRoom(username)
	if !ok || current != roomID {
		return
	}
	h.emitToRoom(roomID, Frame{Event: EvtIncoming, Payload: IncomingPayload{
		Message: fmt.Sprintf("%s has left the room", username),
		Color:   "red",
	}})
	if connID, online := h.sessions.Lookup(username); online {
		h.registry.Unsubscribe(roomID, connID)
	}
	if h.registry.RemoveActive(roomID, username) {
		h.registry.Discard(roomID)
	} else {
		h.registry.ClearCurrent(username)
	}
}

// Send 中继聊天消息：净化内容，分配雪花 id，持久化后向房间广播（含发送者）
// 持久化失败时返回错误，消息不会只广播不落库
func (h *Hub) Send(username, roomID, content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(content) == 0 {
		return errorx.New(errorx.CodeInvalidParam, "empty message")
	}
	if len(content) > constants.MESSAGE_MAX_LENGTH {
		return errorx.Newf(errorx.CodeInvalidParam, "message exceeds %d characters", constants.MESSAGE_MAX_LENGTH)
	}
	clean := h.sanitizer.Sanitize(content)

	msg := &model.Message{
		Uuid:     snowflake.GenerateID(),
		RoomUuid: roomID,
		Sender:   username,
		Content:  clean,
		SendAt:   sql.NullTime{Time: time.Now(), Valid: true},
	}
	if err := h.repos.Message.Create(msg); err != nil {
		return err
	}
	h.emitToRoom(roomID, Frame{Event: EvtIncoming, Payload: IncomingPayload{
		Sender:  username,
		Message: clean,
	}})
	return nil
}

// RelayEncryptedKey 将端到端加密密钥转发给房间内除发送者外的订阅连接
// 密钥只转发不落库
func (h *Hub) RelayEncryptedKey(username, roomID, encryptedKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	senderConn, _ := h.sessions.Lookup(username)
	frame := Frame{Event: EvtReceiveEncryptedKey, Payload: EncryptedKeyPayload{
		RoomID:       roomID,
		Sender:       username,
		EncryptedKey: encryptedKey,
	}}
	for _, connID := range h.registry.Subscribers(roomID) {
		if connID == senderConn {
			continue
		}
		if c, ok := h.clients[connID]; ok {
			c.Push(frame)
		}
	}
}

// NotifyUser 向指定用户的当前连接推送事件，返回用户是否在线
// 供好友服务推送申请和列表变更
func (h *Hub) NotifyUser(username, event string, payload any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.notifyLocked(username, event, payload)
}

// IsOnline 判断用户当前是否有活跃会话
func (h *Hub) IsOnline(username string) bool {
	_, ok := h.sessions.Lookup(username)
	return ok
}

// Logout 主动登出：执行与断连相同的清理，并向自己的连接推送 logout 事件
func (h *Hub) Logout(username string) {
	h.mu.Lock()
	connID, ok := h.sessions.Lookup(username)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.NotifyUser(username, EvtLogout, nil)
	h.Disconnect(connID)
}

// ==================== 内部方法，调用方必须持有 h.mu ====================

func (h *Hub) notifyLocked(username, event string, payload any) bool {
	connID, ok := h.sessions.Lookup(username)
	if !ok {
		return false
	}
	c, ok := h.clients[connID]
	if !ok {
		return false
	}
	c.Push(Frame{Event: event, Payload: payload})
	return true
}

// emitToRoom 向房间的全部订阅连接广播事件帧
func (h *Hub) emitToRoom(roomID string, frame Frame) {
	for _, connID := range h.registry.Subscribers(roomID) {
		if c, ok := h.clients[connID]; ok {
			c.Push(frame)
		}
	}
}

// announceOnline 向在线好友广播上线，并把当前在线的好友回灌给新连接
// 好友查询失败只记日志，不影响连接建立
func (h *Hub) announceOnline(username string, c Conn) {
	friends, err := h.repos.Friend.FindFriendUsernames(username)
	if err != nil {
		zap.L().Error("查询好友列表失败", zap.String("username", username), zap.Error(err))
		return
	}
	for _, friend := range friends {
		if h.notifyLocked(friend, EvtFriendOnline, PresencePayload{Username: username}) {
			c.Push(Frame{Event: EvtFriendOnline, Payload: PresencePayload{Username: friend}})
		}
	}
}

// announceOffline 向在线好友广播下线
func (h *Hub) announceOffline(username string) {
	friends, err := h.repos.Friend.FindFriendUsernames(username)
	if err != nil {
		zap.L().Error("查询好友列表失败", zap.String("username", username), zap.Error(err))
		return
	}
	for _, friend := range friends {
		h.notifyLocked(friend, EvtFriendOffline, PresencePayload{Username: username})
	}
}
