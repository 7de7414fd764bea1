// Package app assembles the services shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/config"
	"github.com/zhouzirui/bot-duet/internal/logger"
	"github.com/zhouzirui/bot-duet/internal/model/persona"
	"github.com/zhouzirui/bot-duet/internal/render"
	"github.com/zhouzirui/bot-duet/internal/service/ai"
	"github.com/zhouzirui/bot-duet/internal/service/chat"
	"github.com/zhouzirui/bot-duet/internal/service/feed"
	"github.com/zhouzirui/bot-duet/internal/service/turn"
)

// App 持有各个服务实例。
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Messages  chat.Store
	Prompts   persona.Store
	Renderer  *render.Renderer
	Portraits *render.PortraitWriter
	Hub       *feed.Hub
}

// New opens the message store and prepares prompts and the renderer.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Render.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	messages, err := chat.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open message store: %w", err)
	}

	face, err := render.LoadFace(cfg.Render.FontPath, cfg.Render.FontSize)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	renderer := render.NewRenderer(face, LayoutFromConfig(cfg.Render))

	log.Info().
		Str("backend", cfg.Store.Backend).
		Str("data_dir", cfg.Store.DataDir).
		Str("output_dir", cfg.Render.OutputDir).
		Msg("services ready")

	return &App{
		Config:    cfg,
		Log:       log,
		Messages:  messages,
		Prompts:   persona.NewFileStore(cfg.Store.PromptDir),
		Renderer:  renderer,
		Portraits: render.NewPortraitWriter(renderer, cfg.Render.OutputDir),
		Hub:       feed.NewHub(logger.Component(log, "feed")),
	}, nil
}

// LayoutFromConfig maps render settings onto a Layout.
func LayoutFromConfig(cfg config.RenderConfig) render.Layout {
	return render.Layout{
		PortraitWidth:  cfg.PortraitWidth,
		PortraitHeight: cfg.PortraitHeight,
		PreviewWidth:   cfg.PreviewWidth,
		PreviewHeight:  cfg.PreviewHeight,
		Padding:        cfg.Padding,
		LineHeight:     cfg.LineHeight,
	}
}

// NewGenerator builds the completion client from the AI settings.
func (a *App) NewGenerator(ctx context.Context) (turn.Generator, error) {
	if !a.Config.AI.Enabled() {
		return nil, errors.New("Ark 凭证或模型未配置，无法生成对话")
	}
	return ai.NewService(ctx, a.Config.AI, logger.Component(a.Log, "ai"))
}

// TurnRunner wraps an orchestrator around gen behind the turn lock.
func (a *App) TurnRunner(gen turn.Generator) (*turn.LockedRunner, error) {
	orchestrator, err := turn.NewOrchestrator(turn.Deps{
		Messages:  a.Messages,
		Prompts:   a.Prompts,
		Generator: gen,
		Portraits: a.Portraits,
		Publisher: a.Hub,
		Logger:    logger.Component(a.Log, "turn"),
	})
	if err != nil {
		return nil, err
	}

	lockPath := a.Config.Turn.LockFile
	if lockPath == "" {
		lockPath = turn.DefaultLockPath(a.Config.Store.DataDir)
	}
	return turn.NewLockedRunner(orchestrator, lockPath), nil
}

// WatchesFiles reports whether the feed watcher can observe the store.
func (a *App) WatchesFiles() bool {
	return a.Config.Store.Backend == config.BackendFile
}
