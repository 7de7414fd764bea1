package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/zhouzirui/bot-duet/internal/app"
	"github.com/zhouzirui/bot-duet/internal/config"
	"github.com/zhouzirui/bot-duet/internal/logger"
	"github.com/zhouzirui/bot-duet/internal/service/turn"
)

// 执行一轮对话后退出，适合由 cron 等外部调度器调用。
func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Log)
	zlog.Logger = log
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, using system environment only")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize services")
		return 1
	}

	gen, err := a.NewGenerator(ctx)
	if err != nil {
		log.Error().Err(err).Msg("completion client unavailable")
		return 1
	}

	runner, err := a.TurnRunner(gen)
	if err != nil {
		log.Error().Err(err).Msg("failed to build turn runner")
		return 1
	}

	return report(ctx, log, runner)
}

func report(ctx context.Context, log zerolog.Logger, runner turn.Runner) int {
	result, err := runner.RunTurn(ctx)
	if err != nil {
		if errors.Is(err, turn.ErrTurnInProgress) {
			log.Warn().Msg("another turn is running, skipping")
		} else {
			log.Error().Err(err).Msg("turn failed")
		}
		return 1
	}

	if result.RenderErr != nil {
		log.Warn().Err(result.RenderErr).Str("run_id", result.RunID).Msg("turn saved but portraits are stale")
	}
	fmt.Printf("%s: %s\n", result.Turn.Speaker.Label(), result.Turn.Utterance)
	return 0
}
