package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/infernocadet/secure-message-chat/pkg/constants"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Conn 抽象的客户端连接
// Push 不阻塞，发送缓冲满时丢帧并记日志，避免慢客户端拖垮广播
type Conn interface {
	ID() string
	Push(frame Frame)
}

// UserConn 基于 websocket 的客户端连接
type UserConn struct {
	id       string
	username string
	ws       *websocket.Conn
	sendBack chan Frame
	done     chan struct{}
	hub      *Hub
}

// NewUserConn 创建连接并分配连接 id
func NewUserConn(hub *Hub, ws *websocket.Conn, username string) *UserConn {
	return &UserConn{
		id:       uuid.NewString(),
		username: username,
		ws:       ws,
		sendBack: make(chan Frame, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
		hub:      hub,
	}
}

func (c *UserConn) ID() string {
	return c.id
}

func (c *UserConn) Username() string {
	return c.username
}

// Push 将事件帧写入发送缓冲
func (c *UserConn) Push(frame Frame) {
	select {
	case c.sendBack <- frame:
	case <-c.done:
	default:
		zap.L().Warn("发送缓冲已满，丢弃事件帧",
			zap.String("username", c.username),
			zap.String("event", frame.Event))
	}
}

// Start 启动读写循环
func (c *UserConn) Start() {
	go c.readLoop()
	go c.writeLoop()
}

// readLoop 读取入站帧并交给 Hub 分发，连接断开时触发清理
func (c *UserConn) readLoop() {
	defer func() {
		c.hub.Disconnect(c.id)
		close(c.done)
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(int64(constants.MESSAGE_MAX_LENGTH * 8))
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Info("websocket 连接异常关闭",
					zap.String("username", c.username), zap.Error(err))
			}
			return
		}
		c.hub.HandleFrame(c, c.username, raw)
	}
}

// writeLoop 将出站帧序列化写入 websocket，并周期性发送 ping
func (c *UserConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case frame := <-c.sendBack:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(frame)
			if err != nil {
				zap.L().Error("事件帧序列化失败", zap.Error(err))
				continue
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
