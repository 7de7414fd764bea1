package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/handler/feed"
	"github.com/zhouzirui/bot-duet/internal/handler/message"
	"github.com/zhouzirui/bot-duet/internal/handler/preview"
	"github.com/zhouzirui/bot-duet/internal/handler/turn"
	middlewarePkg "github.com/zhouzirui/bot-duet/internal/middleware"
	chatService "github.com/zhouzirui/bot-duet/internal/service/chat"
	feedService "github.com/zhouzirui/bot-duet/internal/service/feed"
	turnService "github.com/zhouzirui/bot-duet/internal/service/turn"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// Deps 路由所需的服务。Hub 与 Turns 为空时不注册对应接口。
type Deps struct {
	Messages chatService.Store
	Renderer preview.Renderer
	Hub      *feedService.Hub
	Turns    turnService.Runner
	Logger   zerolog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.AccessLog(deps.Logger.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// 必须在 Route 之前设置，子路由才会继承。
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	log := deps.Logger.With().Str("component", "handler").Logger()

	r.Route("/api", func(api chi.Router) {
		message.New(deps.Messages, log).RegisterRoutes(api)
		preview.New(deps.Messages, deps.Renderer, log).RegisterRoutes(api)

		if deps.Hub != nil {
			feed.New(deps.Hub, deps.Messages, log).RegisterRoutes(api)
		}

		// Opt-in write endpoint
		if deps.Turns != nil {
			turn.New(deps.Turns, log).RegisterRoutes(api)
		}
	})

	return r
}
