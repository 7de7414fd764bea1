package preview

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	chatservice "github.com/zhouzirui/bot-duet/internal/service/chat"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// Renderer 生成双方最新消息的合成图。
type Renderer interface {
	Preview(latestA, latestB string) ([]byte, error)
}

// Handler 会话预览图的HTTP处理器
type Handler struct {
	store    chatservice.Store
	renderer Renderer
	log      zerolog.Logger
}

// New 创建预览图处理器
func New(store chatservice.Store, renderer Renderer, log zerolog.Logger) *Handler {
	return &Handler{store: store, renderer: renderer, log: log}
}

// RegisterRoutes 注册预览图路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversation-image", h.handleConversationImage)
}

// handleConversationImage 每次请求都重新渲染，不读取已生成的 PNG 文件。
func (h *Handler) handleConversationImage(w http.ResponseWriter, r *http.Request) {
	latest := make(map[bot.ID]string, 2)
	for _, id := range bot.All() {
		result, err := h.store.Load(r.Context(), id)
		if err != nil {
			h.log.Error().Err(err).Str("bot", string(id)).Msg("message log read failed")
			utils.RespondError(w, http.StatusInternalServerError, "Failed to generate image")
			return
		}
		latest[id] = result.Messages.Latest()
	}

	data, err := h.renderer.Preview(latest[bot.A], latest[bot.B])
	if err != nil {
		h.log.Error().Err(err).Msg("preview render failed")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate image")
		return
	}

	utils.RespondPNG(w, data)
}
