package message

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	chatservice "github.com/zhouzirui/bot-duet/internal/service/chat"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// Response 是单个 bot 消息查询接口的返回体。
type Response struct {
	Bot           string   `json:"bot"`
	LatestMessage string   `json:"latest_message"`
	AllMessages   []string `json:"all_messages"`
	Count         int      `json:"count"`
}

// Handler 消息查询的HTTP处理器
type Handler struct {
	store chatservice.Store
	log   zerolog.Logger
}

// New 创建消息处理器
func New(store chatservice.Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// RegisterRoutes 注册消息相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/bot-a-message", h.handleMessages(bot.A))
	r.Get("/bot-b-message", h.handleMessages(bot.B))
}

// handleMessages 返回某个 bot 的全部保存消息。日志从未写入时返回空值。
func (h *Handler) handleMessages(id bot.ID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.store.Load(r.Context(), id)
		if err != nil {
			h.log.Error().Err(err).Str("bot", string(id)).Msg("message log read failed")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to read messages")
			return
		}

		messages := []string(result.Messages)
		if messages == nil {
			messages = []string{}
		}

		utils.RespondJSON(w, http.StatusOK, Response{
			Bot:           string(id),
			LatestMessage: result.Messages.Latest(),
			AllMessages:   messages,
			Count:         len(messages),
		})
	}
}
