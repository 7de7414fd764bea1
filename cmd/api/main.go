package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/zhouzirui/bot-duet/internal/app"
	"github.com/zhouzirui/bot-duet/internal/config"
	"github.com/zhouzirui/bot-duet/internal/handler"
	"github.com/zhouzirui/bot-duet/internal/logger"
	"github.com/zhouzirui/bot-duet/internal/service/feed"
	"github.com/zhouzirui/bot-duet/internal/service/turn"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.Log)
	zlog.Logger = log
	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to load .env file, continuing with system environment variables only")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	// 只有在需要写入时才初始化模型：定时轮次或手动接口。
	var runner turn.Runner
	if cfg.Turn.Interval > 0 || cfg.Turn.EndpointEnabled {
		gen, err := a.NewGenerator(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("completion client unavailable, turns disabled - 请检查 Ark 模型相关环境变量")
		} else if runner, err = a.TurnRunner(gen); err != nil {
			log.Fatal().Err(err).Msg("failed to build turn runner")
		}
	}

	deps := handler.Deps{
		Messages: a.Messages,
		Renderer: a.Renderer,
		Hub:      a.Hub,
		Logger:   log,
	}
	if cfg.Turn.EndpointEnabled && runner != nil {
		deps.Turns = runner
		log.Info().Msg("manual turn endpoint enabled")
	}

	var wg conc.WaitGroup
	if a.WatchesFiles() {
		watcher := feed.NewWatcher(cfg.Store.DataDir, a.Messages, a.Hub, logger.Component(log, "feed"))
		wg.Go(func() {
			if err := watcher.Run(ctx); err != nil {
				log.Error().Err(err).Msg("feed watcher stopped")
			}
		})
	}
	if cfg.Turn.Interval > 0 && runner != nil {
		wg.Go(func() { runScheduledTurns(ctx, log, runner, cfg.Turn.Interval) })
	}

	startServer(ctx, log, cfg.Server, handler.NewRouter(deps))
	stop()
	wg.Wait()
}

func runScheduledTurns(ctx context.Context, log zerolog.Logger, runner turn.Runner, interval time.Duration) {
	log.Info().Dur("interval", interval).Msg("scheduled turns enabled")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := runner.RunTurn(ctx)
			switch {
			case errors.Is(err, turn.ErrTurnInProgress):
				log.Info().Msg("previous turn still running, skipping tick")
			case err != nil:
				log.Error().Err(err).Msg("scheduled turn failed")
			default:
				log.Info().Str("run_id", result.RunID).Str("bot", string(result.Turn.Speaker)).Msg("scheduled turn completed")
			}
		}
	}
}

func startServer(ctx context.Context, log zerolog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("bot duet listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
