package feed

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	chatservice "github.com/zhouzirui/bot-duet/internal/service/chat"
	feedservice "github.com/zhouzirui/bot-duet/internal/service/feed"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// Handler 推送双方最新消息的实时订阅处理器，支持 WebSocket 与 SSE。
type Handler struct {
	hub       *feedservice.Hub
	store     chatservice.Store
	log       zerolog.Logger
	upgrader  websocket.Upgrader
	heartbeat time.Duration
}

// New 创建订阅处理器
func New(hub *feedservice.Hub, store chatservice.Store, log zerolog.Logger) *Handler {
	return &Handler{
		hub:   hub,
		store: store,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		heartbeat: 15 * time.Second,
	}
}

// RegisterRoutes 注册订阅路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/feed/ws", h.handleWebSocket)
	r.Get("/feed/sse", h.handleSSE)
}

type outgoingMessage struct {
	Type      string             `json:"type"`
	Data      feedservice.Update `json:"data"`
	Timestamp int64              `json:"timestamp"`
}

func newMessage(kind string, u feedservice.Update) outgoingMessage {
	return outgoingMessage{Type: kind, Data: u, Timestamp: time.Now().Unix()}
}
