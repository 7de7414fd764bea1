package turn

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	turnservice "github.com/zhouzirui/bot-duet/internal/service/turn"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// Response 是手动触发一轮对话后的返回体。
type Response struct {
	RunID   string `json:"run_id"`
	Bot     string `json:"bot"`
	Message string `json:"message"`
}

// Handler 手动触发对话轮次的HTTP处理器，默认不注册。
type Handler struct {
	runner turnservice.Runner
	log    zerolog.Logger
}

// New 创建轮次处理器，runner 通常是带文件锁的 LockedRunner。
func New(runner turnservice.Runner, log zerolog.Logger) *Handler {
	return &Handler{runner: runner, log: log}
}

// RegisterRoutes 注册轮次路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/turn", h.handleRunTurn)
}

// handleRunTurn 同步执行一轮并返回新发言。错误细节只写日志。
func (h *Handler) handleRunTurn(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.RunTurn(r.Context())
	if err != nil {
		if errors.Is(err, turnservice.ErrTurnInProgress) {
			utils.RespondError(w, http.StatusConflict, "turn already in progress")
			return
		}
		h.log.Error().Err(err).Msg("manual turn failed")
		utils.RespondError(w, http.StatusInternalServerError, "turn failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, Response{
		RunID:   result.RunID,
		Bot:     string(result.Turn.Speaker),
		Message: result.Turn.Utterance,
	})
}
