package mokjang_sdk

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 移动端/WebView 不校验 Origin
	},
}

// Client ws和hub的连接，一个用户可以有多个（多设备）
type Client struct {
	hub *WsServer

	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// UserID 和用户关联
	UserID uint64
}

// readPump 将消息从client (websocket 连接) 到hub管理。
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Uint64("user_id", c.UserID).Msg("ws read failed")
			}
			break
		}
		c.hub.handleMessage(c, message)
	}
}

// writePump 将消息从hub管理写到具体的client (websocket 连接)。
// 每条通知单独一帧，客户端按帧解析 JSON。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Uint64("user_id", c.UserID).Msg("ws ping failed")
				return
			}
		}
	}
}

// WsServer 通知推送 hub：按用户维护在线连接
type WsServer struct {
	clients map[*Client]bool
	// 用户ID ->该用户所有活跃的Websocket连接（支持多设备）
	userClients map[uint64][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	// 回调处理客户端上行消息
	onMessage func(client *Client, msg []byte)
}

func NewWsServer() *WsServer {
	return &WsServer{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
	}
}

// Run hub 主循环，Stop 后退出并关闭所有连接
func (h *WsServer) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			h.userClients = make(map[uint64][]*Client)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()
			log.Debug().Uint64("user_id", client.UserID).Msg("ws registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
		}
	}
}

func (h *WsServer) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *WsServer) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	conns := h.userClients[client.UserID]
	for i, conn := range conns {
		if conn == client {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.userClients, client.UserID)
	} else {
		h.userClients[client.UserID] = conns
	}
}

func (h *WsServer) handleMessage(client *Client, msg []byte) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

func (h *WsServer) SetOnMessage(fn func(client *Client, msg []byte)) {
	h.onMessage = fn
}

// ServeWS 升级连接并注册到 hub，userID 由调用方鉴权得到
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		UserID: userID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Online 用户当前连接数
func (h *WsServer) Online(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// SendToUser 发送消息到用户的全部连接；缓冲区满时丢弃（客户端可通过 HTTP 拉取补齐）
func (h *WsServer) SendToUser(userID uint64, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.userClients[userID] {
		select {
		case client.send <- msg:
		default:
			log.Debug().Uint64("user_id", userID).Msg("ws send buffer full, drop")
		}
	}
}
