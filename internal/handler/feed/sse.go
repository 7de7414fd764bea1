package feed

import (
	"net/http"
	"time"

	feedservice "github.com/zhouzirui/bot-duet/internal/service/feed"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// handleSSE 与 WebSocket 推送相同的数据，使用 snapshot / update 两种事件。
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	updates, unsubscribe := h.hub.Subscribe(16)
	defer unsubscribe()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	for _, u := range feedservice.Snapshot(ctx, h.store, h.log) {
		if err := utils.SendSSEEvent(w, flusher, "snapshot", u); err != nil {
			return
		}
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "update", u); err != nil {
				h.log.Debug().Err(err).Msg("feed sse write failed")
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
