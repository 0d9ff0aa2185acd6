package chat

// roomState 单个房间的瞬时状态
// members 是曾经加入过的成员，active 是当前在房间内的成员，
// subs 是订阅该房间广播的连接 id，allocator 是分配房间的发起者
type roomState struct {
	members   map[string]struct{}
	active    map[string]struct{}
	subs      map[string]struct{}
	allocator string
}

func newRoomState(allocator string) *roomState {
	return &roomState{
		members:   make(map[string]struct{}),
		active:    make(map[string]struct{}),
		subs:      make(map[string]struct{}),
		allocator: allocator,
	}
}

// RoomRegistry 房间注册表，维护用户当前所在房间和各房间的瞬时状态
// 注册表本身不加锁，所有访问由 Hub 的互斥锁串行化
type RoomRegistry struct {
	current map[string]string     // 用户名 -> 房间 id
	rooms   map[string]*roomState // 房间 id -> 状态
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		current: make(map[string]string),
		rooms:   make(map[string]*roomState),
	}
}

// CurrentRoom 查询用户当前所在的房间
func (r *RoomRegistry) CurrentRoom(username string) (string, bool) {
	roomID, ok := r.current[username]
	return roomID, ok
}

// IsActive 判断用户是否在房间的活跃集合内
func (r *RoomRegistry) IsActive(roomID, username string) bool {
	st, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	_, active := st.active[username]
	return active
}

// Allocator 返回房间的分配者，房间无状态时返回空串
func (r *RoomRegistry) Allocator(roomID string) string {
	st, ok := r.rooms[roomID]
	if !ok {
		return ""
	}
	return st.allocator
}

// Assign 为发起者分配房间：登记双方为成员，双方的当前房间指向该房间，
// 但只有发起者进入活跃集合，对端要等自己发起加入后才算活跃
func (r *RoomRegistry) Assign(roomID, initiator, peer string) {
	st := newRoomState(initiator)
	st.members[initiator] = struct{}{}
	st.members[peer] = struct{}{}
	st.active[initiator] = struct{}{}
	r.rooms[roomID] = st
	r.current[initiator] = roomID
	r.current[peer] = roomID
}

// Join 将用户加入房间的成员和活跃集合
func (r *RoomRegistry) Join(roomID, username string) {
	st, ok := r.rooms[roomID]
	if !ok {
		st = newRoomState(username)
		r.rooms[roomID] = st
	}
	st.members[username] = struct{}{}
	st.active[username] = struct{}{}
	r.current[username] = roomID
}

// Subscribe 将连接订阅到房间广播
func (r *RoomRegistry) Subscribe(roomID, connID string) {
	if st, ok := r.rooms[roomID]; ok {
		st.subs[connID] = struct{}{}
	}
}

// Unsubscribe 取消连接对房间广播的订阅
func (r *RoomRegistry) Unsubscribe(roomID, connID string) {
	if st, ok := r.rooms[roomID]; ok {
		delete(st.subs, connID)
	}
}

// Subscribers 返回房间当前订阅的连接 id 列表
func (r *RoomRegistry) Subscribers(roomID string) []string {
	st, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	connIDs := make([]string, 0, len(st.subs))
	for connID := range st.subs {
		connIDs = append(connIDs, connID)
	}
	return connIDs
}

// RemoveActive 将用户移出房间的活跃集合，返回活跃集合是否已清空
func (r *RoomRegistry) RemoveActive(roomID, username string) bool {
	st, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	delete(st.active, username)
	return len(st.active) == 0
}

// ClearCurrent 清除用户的当前房间条目
func (r *RoomRegistry) ClearCurrent(username string) {
	delete(r.current, username)
}

// Discard 丢弃房间的瞬时状态，并清理所有仍指向该房间的当前房间条目
// 持久化的房间记录和消息不受影响，下次配对会复用同一房间 id
func (r *RoomRegistry) Discard(roomID string) {
	delete(r.rooms, roomID)
	for username, id := range r.current {
		if id == roomID {
			delete(r.current, username)
		}
	}
}
