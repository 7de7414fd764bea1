package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	feedservice "github.com/zhouzirui/bot-duet/internal/service/feed"
)

// handleWebSocket 连接建立后先发送快照，然后推送每一轮的更新。客户端发来的消息被忽略。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := h.hub.Subscribe(16)
	defer unsubscribe()

	h.log.Debug().Str("remote", r.RemoteAddr).Msg("feed websocket connected")

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go h.readLoop(conn, cancel)

	for _, u := range feedservice.Snapshot(ctx, h.store, h.log) {
		if err := h.write(conn, newMessage("snapshot", u)); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, newMessage("update", u)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop 只负责处理控制帧并发现连接关闭。
func (h *Handler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Msg("feed websocket read error")
			}
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, msg outgoingMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Debug().Err(err).Msg("feed websocket write failed")
		return err
	}
	return nil
}
