package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	appChat "github.com/comparo/backend/internal/application/chat"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/log"
	infraWS "github.com/comparo/backend/internal/infrastructure/websocket"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// 连接心跳参数
const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsWriteWait  = 10 * time.Second
)

// SnapshotEventType 连接建立后首先推送的会话快照
const SnapshotEventType = "chat.snapshot"

// WebSocketHandler 会话事件流
type WebSocketHandler struct {
	sessions *appChat.SessionManager
	hub      *infraWS.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler 创建事件流处理器
func NewWebSocketHandler(sessions *appChat.SessionManager, hub *infraWS.Hub, cfg *config.WebSocketConfig) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: log.NewModuleLogger("http", "websocket"),
	}
}

// Stream 订阅会话事件
// @Summary 会话事件流（WebSocket）
// @Description 推送消息追加、状态推进、输入指示、提示和状态机变化
// @Tags 对话
// @Param id path string true "会话 ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/sessions/{id}/ws [get]
func (h *WebSocketHandler) Stream(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "会话不存在")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", "session_id", session.ID(), "error", err)
		return
	}

	snapshot, _ := json.Marshal(&infraWS.EventMessage{
		Type:      SnapshotEventType,
		SessionID: session.ID(),
		Payload:   session.Snapshot(),
		Time:      time.Now(),
	})
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		_ = conn.Close()
		return
	}

	wsConn := infraWS.NewConnection(session.ID())
	h.hub.Register(wsConn)
	h.logger.Debug("Event stream connected", "session_id", session.ID())

	go h.writePump(conn, wsConn)
	h.readPump(conn, wsConn)
}

// readPump 只处理控制帧，连接断开时注销
func (h *WebSocketHandler) readPump(conn *websocket.Conn, wsConn *infraWS.Connection) {
	defer func() {
		h.hub.Unregister(wsConn)
		_ = conn.Close()
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Event stream read error", "session_id", wsConn.SessionID, "error", err)
			}
			return
		}
	}
}

// writePump 转发 Hub 消息并定期发送 Ping；Send 关闭时结束
func (h *WebSocketHandler) writePump(conn *websocket.Conn, wsConn *infraWS.Connection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-wsConn.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
