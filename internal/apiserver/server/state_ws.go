// state_ws.go WebSocket 状态网关
//
// 把状态容器的订阅能力暴露为实时推送：客户端连上后先收到当前状态，
// 之后每次 dispatch 都会推送新状态。
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// upgrader WebSocket 升级器配置
//
// CheckOrigin 当前放行所有来源（演示用），生产部署应收紧。
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// stateMessage 推送消息格式
type stateMessage struct {
	Type string `json:"type"` // "state"
	Data any    `json:"data"`
}

// StateWebSocket 处理 WebSocket 连接请求
//
// 路由: GET /ws/state
//
// 推送消息格式：
//
//	状态消息：{"type": "state", "data": {...AppState...}}
//
// 慢客户端漏掉的中间状态不补发，断线重连后以首条推送回到最新状态。
func (h *Handler) StateWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	updates, cancel := h.state.Subscribe()
	defer cancel()

	h.log.Info("state websocket client connected", "remote", r.RemoteAddr)

	// 读循环只负责感知断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 连接建立后先推当前状态
	if err := h.writeState(conn, h.state.State()); err != nil {
		return
	}

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := h.writeState(conn, state); err != nil {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeState 向连接推送一条状态消息
func (h *Handler) writeState(conn *websocket.Conn, state any) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(stateMessage{Type: "state", Data: state})
}
