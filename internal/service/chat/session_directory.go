package chat

import "sync"

// SessionDirectory 会话目录，维护用户名到连接 id 的映射
// 同一用户重连时直接覆盖旧映射，旧连接断开时按连接 id 反向清理，
// 反向清理只移除仍然指向该连接的条目，避免误删重连后的新会话
type SessionDirectory struct {
	mu     sync.RWMutex
	byUser map[string]string
}

func NewSessionDirectory() *SessionDirectory {
	return &SessionDirectory{byUser: make(map[string]string)}
}

// Record 登记用户会话，重复登记覆盖旧连接 id
func (d *SessionDirectory) Record(username, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byUser[username] = connID
}

// Lookup 查找用户当前的连接 id
func (d *SessionDirectory) Lookup(username string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	connID, ok := d.byUser[username]
	return connID, ok
}

// RemoveConn 按连接 id 反向清理，返回被移除会话的用户名列表
// 用户已用新连接重连时其条目指向新 id，不会被移除
func (d *SessionDirectory) RemoveConn(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var removed []string
	for username, id := range d.byUser {
		if id == connID {
			delete(d.byUser, username)
			removed = append(removed, username)
		}
	}
	return removed
}

// Remove 按用户名移除会话（登出时使用）
func (d *SessionDirectory) Remove(username string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byUser, username)
}
