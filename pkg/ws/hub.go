package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 推送给客户端的消息类型
const (
	MsgTypeInit             = "init"              // 连接建立时的状态快照
	MsgTypeAnalysisProgress = "analysis_progress" // 批次处理进度
	MsgTypeAnalysisComplete = "analysis_complete" // 分析完成
	MsgTypeAnalysisError    = "analysis_error"    // 分析失败
)

// Message 推送消息信封
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Snapshot 新连接建立时推送的当前状态：车辆结果列表 + 分析进度
type Snapshot struct {
	Vehicles interface{} `json:"vehicles"`
	Status   interface{} `json:"status"`
}

// Hub 分析事件推送中心
// 所有客户端收到同样的事件流；发送缓冲打满的慢消费者直接断开，不回压分析流程
type Hub struct {
	logger   *zap.Logger
	snapshot func() Snapshot

	register   chan *client
	unregister chan *client
	events     chan []byte

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan []byte, 256),
		clients:    make(map[*client]struct{}),
	}
}

// SetSnapshot 设置新连接的状态快照来源，在 Run 之前调用
func (h *Hub) SetSnapshot(fn func() Snapshot) {
	h.snapshot = fn
}

// Run 事件循环
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("WebSocket client connected", zap.Int("total_clients", total))
			h.greet(c)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("WebSocket client disconnected", zap.Int("total_clients", total))

		case data := <-h.events:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// greet 向新客户端推送当前状态快照
func (h *Hub) greet(c *client) {
	if h.snapshot == nil {
		return
	}
	data, err := json.Marshal(Message{Type: MsgTypeInit, Data: h.snapshot()})
	if err != nil {
		h.logger.Error("Failed to marshal snapshot", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("Dropped snapshot, client buffer full")
	}
}

// publish 序列化并广播一条结构化消息
func (h *Hub) publish(msgType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: msgType, Data: payload})
	if err != nil {
		h.logger.Error("Failed to marshal push message", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.events <- data
}

// PublishProgress 推送批次进度
func (h *Hub) PublishProgress(progress interface{}) {
	h.publish(MsgTypeAnalysisProgress, progress)
}

// PublishComplete 推送分析完成事件
func (h *Hub) PublishComplete(payload interface{}) {
	h.publish(MsgTypeAnalysisComplete, payload)
}

// PublishError 推送分析失败事件
func (h *Hub) PublishError(message string) {
	h.publish(MsgTypeAnalysisError, map[string]string{"error": message})
}

// ClientCount 当前客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve 接管一条升级完成的连接，阻塞到对端断开
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- c
	go c.writeLoop()
	c.readLoop()
}

// client 一条活跃连接
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readLoop 读消息只用于探测断开，客户端不发业务数据
func (c *client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop 把 send 通道里的数据写到连接，通道关闭即退出
func (c *client) writeLoop() {
	defer c.conn.Close()

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
