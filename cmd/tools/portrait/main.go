package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/zhouzirui/bot-duet/internal/app"
	"github.com/zhouzirui/bot-duet/internal/config"
	"github.com/zhouzirui/bot-duet/internal/logger"
	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/render"
	"github.com/zhouzirui/bot-duet/internal/service/chat"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// 用于手动检查排版与字体效果，不调用模型。
func main() {
	if err := godotenv.Load(); err != nil {
		zlog.Debug().Err(err).Msg("无法加载 .env，改用系统环境变量")
	}

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("配置加载失败")
	}
	log := logger.New(config.LogConfig{Level: cfg.Log.Level, Format: "console"})

	mode := flag.String("mode", "portrait", "输出模式: portrait 或 preview")
	who := flag.String("bot", "A", "portrait 模式下的 bot (A/B)")
	text := flag.String("text", "", "portrait 文本，留空则使用已保存的最新消息")
	textB := flag.String("text-b", "", "preview 模式下 Bot B 的文本，留空则使用已保存的最新消息")
	fontPath := flag.String("font", cfg.Render.FontPath, "字体文件路径 (TTF/OTF/TTC)")
	fontSize := flag.Float64("size", cfg.Render.FontSize, "字号")
	outputPath := flag.String("out", "", "输出 PNG 路径 (默认写入输出目录)")

	flag.Parse()

	face, err := render.LoadFace(*fontPath, *fontSize)
	if err != nil {
		log.Fatal().Err(err).Msg("字体加载失败")
	}
	renderer := render.NewRenderer(face, app.LayoutFromConfig(cfg.Render))

	ctx := context.Background()
	store, err := chat.Open(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("消息存储打开失败")
	}

	latest := func(id bot.ID, override string) string {
		if override != "" {
			return override
		}
		return chat.LoadSoft(ctx, store, id, log).Latest()
	}

	var (
		data []byte
		name string
	)
	switch *mode {
	case "portrait":
		id, err := bot.Parse(*who)
		if err != nil {
			log.Fatal().Err(err).Msg("bot 参数无效")
		}
		data, err = renderer.Portrait(id, latest(id, *text))
		if err != nil {
			log.Fatal().Err(err).Msg("渲染失败")
		}
		name = id.PortraitFile()
	case "preview":
		data, err = renderer.Preview(latest(bot.A, *text), latest(bot.B, *textB))
		if err != nil {
			log.Fatal().Err(err).Msg("渲染失败")
		}
		name = "conversation_preview.png"
	default:
		flag.Usage()
		log.Fatal().Str("mode", *mode).Msg("请通过 -mode=portrait 或 -mode=preview 指定模式")
	}

	path := *outputPath
	if path == "" {
		path = filepath.Join(cfg.Render.OutputDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatal().Err(err).Msg("创建输出目录失败")
	}
	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		log.Fatal().Err(err).Msg("写入图片失败")
	}

	log.Info().Str("path", path).Int("bytes", len(data)).Msg("图片已生成")
}
