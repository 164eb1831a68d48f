package sink

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Frame ws 客户端收到的单条快照。
type Frame struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Ts    int64   `json:"ts"` // unix 毫秒
}

// Hub 通过 WebSocket 向所有已连接客户端实时推送快照的 sink，
// 供外部图表做在线绘制。每个客户端一个写泵，慢客户端丢帧不阻塞仿真。
type Hub struct {
	schema   map[string]struct{}
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	closed  bool

	eventSink func(string, map[string]interface{})
}

const clientQueueSize = 64

func NewHub(keys ...string) *Hub {
	schema := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		schema[k] = struct{}{}
	}
	return &Hub{
		schema:   schema,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]chan []byte),
	}
}

// SetEventSink 注入结构化日志钩子。
func (h *Hub) SetEventSink(fn func(string, map[string]interface{})) {
	h.eventSink = fn
}

// HasKey 报告字段是否在推送 schema 内。
func (h *Hub) HasKey(key string) bool {
	_, ok := h.schema[key]
	return ok
}

// Append 实现 Sink：编码为 JSON 帧并广播。
// 客户端队列满时丢弃该帧（尽力而为语义，与整个仿真流一致）。
func (h *Hub) Append(key string, value float64, ts time.Time) {
	if _, ok := h.schema[key]; !ok {
		return
	}
	raw, err := json.Marshal(Frame{Key: key, Value: value, Ts: ts.UnixMilli()})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, q := range h.clients {
		select {
		case q <- raw:
		default:
		}
	}
}

// ServeHTTP 升级连接并注册客户端；读循环只用于感知断开。
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logEvent("ws_upgrade_error", map[string]interface{}{"error": err.Error()})
		return
	}

	q := make(chan []byte, clientQueueSize)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = q
	count := len(h.clients)
	h.mu.Unlock()
	h.logEvent("ws_client_connected", map[string]interface{}{
		"remote":  conn.RemoteAddr().String(),
		"clients": count,
	})

	go h.writePump(conn, q)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *Hub) writePump(conn *websocket.Conn, q <-chan []byte) {
	for raw := range q {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.drop(conn)
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	q, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	if ok {
		close(q)
		conn.Close()
		h.logEvent("ws_client_disconnected", map[string]interface{}{
			"remote": conn.RemoteAddr().String(),
		})
	}
}

// ClientCount 当前连接数。
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close 断开所有客户端并拒绝后续连接。
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[*websocket.Conn]chan []byte)
	h.mu.Unlock()
	for conn, q := range clients {
		close(q)
		conn.Close()
	}
}

func (h *Hub) logEvent(event string, fields map[string]interface{}) {
	if h.eventSink != nil {
		h.eventSink(event, fields)
	}
}
