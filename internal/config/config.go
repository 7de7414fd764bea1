package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Store  StoreConfig
	Render RenderConfig
	Turn   TurnConfig
	Log    LogConfig
}

// Load 从环境变量以及可选的 DUET_CONFIG 配置文件加载配置。
func Load() (*Config, error) {
	return LoadFile(strings.TrimSpace(os.Getenv("DUET_CONFIG")))
}

// LoadFile reads configuration from path (yaml/json/toml, optional) with
// environment variables taking precedence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	for _, b := range bindings {
		if b.def != nil {
			v.SetDefault(b.key, b.def)
		}
		args := append([]string{b.key}, b.env...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	server, err := loadServerConfig(v)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig(v)
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig(v)
	if err != nil {
		return nil, err
	}

	render, err := loadRenderConfig(v)
	if err != nil {
		return nil, err
	}

	turn, err := loadTurnConfig(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		AI:     ai,
		Store:  store,
		Render: render,
		Turn:   turn,
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		},
	}, nil
}

type binding struct {
	key string
	env []string
	def any
}

var bindings = []binding{
	{key: "server.port", env: []string{"PORT"}, def: "8080"},

	{key: "ai.api_key", env: []string{"ARK_API_KEY"}},
	{key: "ai.access_key", env: []string{"ARK_ACCESS_KEY"}},
	{key: "ai.secret_key", env: []string{"ARK_SECRET_KEY"}},
	{key: "ai.model", env: []string{"ARK_MODEL", "Model"}},
	{key: "ai.base_url", env: []string{"ARK_BASE_URL"}, def: "https://ark.cn-beijing.volces.com/api/v3"},
	{key: "ai.region", env: []string{"ARK_REGION"}, def: "cn-beijing"},
	{key: "ai.temperature", env: []string{"ARK_TEMPERATURE"}, def: 0.8},
	{key: "ai.top_p", env: []string{"ARK_TOP_P"}},
	{key: "ai.max_tokens", env: []string{"ARK_MAX_TOKENS"}, def: 150},
	{key: "ai.timeout", env: []string{"COMPLETION_TIMEOUT"}, def: "30s"},

	{key: "store.backend", env: []string{"STORE_BACKEND"}, def: "file"},
	{key: "store.data_dir", env: []string{"DATA_DIR"}, def: "."},
	{key: "store.prompt_dir", env: []string{"PROMPT_DIR"}},

	{key: "render.output_dir", env: []string{"OUTPUT_DIR"}},
	{key: "render.font_path", env: []string{"FONT_PATH"}},
	{key: "render.font_size", env: []string{"FONT_SIZE"}, def: 20.0},
	{key: "render.portrait_width", env: []string{"PORTRAIT_WIDTH"}, def: 800},
	{key: "render.portrait_height", env: []string{"PORTRAIT_HEIGHT"}, def: 200},
	{key: "render.preview_width", env: []string{"PREVIEW_WIDTH"}, def: 800},
	{key: "render.preview_height", env: []string{"PREVIEW_HEIGHT"}, def: 400},
	{key: "render.padding", env: []string{"RENDER_PADDING"}, def: 40},
	{key: "render.line_height", env: []string{"RENDER_LINE_HEIGHT"}, def: 30},

	{key: "turn.interval", env: []string{"TURN_INTERVAL"}, def: "0s"},
	{key: "turn.endpoint_enabled", env: []string{"TURN_ENDPOINT_ENABLED"}, def: false},
	{key: "turn.lock_file", env: []string{"TURN_LOCK_FILE"}},

	{key: "log.level", env: []string{"LOG_LEVEL"}, def: "info"},
	{key: "log.format", env: []string{"LOG_FORMAT"}, def: "json"},
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(v *viper.Viper) (ServerConfig, error) {
	port := strings.TrimSpace(v.GetString("server.port"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	timeout := c.Timeout
	// 重试交给调度方，单次调用失败即视为本轮失败。
	retryTimes := 0
	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
		Timeout:     &timeout,
		RetryTimes:  &retryTimes,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig(v *viper.Viper) (AIConfig, error) {
	temperature, err := optionalFloat(v, "ai.temperature")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := optionalFloat(v, "ai.top_p")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := optionalInt(v, "ai.max_tokens")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := duration(v, "ai.timeout")
	if err != nil {
		return AIConfig{}, err
	}
	if timeout <= 0 {
		return AIConfig{}, fmt.Errorf("invalid ai.timeout value %s: must be positive", timeout)
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(v.GetString("ai.api_key")),
		AccessKey:   strings.TrimSpace(v.GetString("ai.access_key")),
		SecretKey:   strings.TrimSpace(v.GetString("ai.secret_key")),
		Model:       strings.TrimSpace(v.GetString("ai.model")),
		BaseURL:     strings.TrimSpace(v.GetString("ai.base_url")),
		Region:      strings.TrimSpace(v.GetString("ai.region")),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	}, nil
}

// StoreConfig selects and locates the message store.
type StoreConfig struct {
	Backend   string // file | memory
	DataDir   string
	PromptDir string
}

const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

func loadStoreConfig(v *viper.Viper) (StoreConfig, error) {
	backend := strings.ToLower(strings.TrimSpace(v.GetString("store.backend")))
	switch backend {
	case "":
		backend = BackendFile
	case BackendFile, BackendMemory:
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_BACKEND value %q", backend)
	}

	dataDir := strings.TrimSpace(v.GetString("store.data_dir"))
	if dataDir == "" {
		dataDir = "."
	}

	promptDir := strings.TrimSpace(v.GetString("store.prompt_dir"))
	if promptDir == "" {
		promptDir = dataDir
	}

	return StoreConfig{
		Backend:   backend,
		DataDir:   dataDir,
		PromptDir: promptDir,
	}, nil
}

// RenderConfig 描述图片输出与排版参数。
type RenderConfig struct {
	OutputDir      string
	FontPath       string
	FontSize       float64
	PortraitWidth  int
	PortraitHeight int
	PreviewWidth   int
	PreviewHeight  int
	Padding        int
	LineHeight     int
}

func loadRenderConfig(v *viper.Viper) (RenderConfig, error) {
	fontSize, err := cast.ToFloat64E(v.Get("render.font_size"))
	if err != nil {
		return RenderConfig{}, fmt.Errorf("invalid render.font_size value %q: %w", v.GetString("render.font_size"), err)
	}

	ints := map[string]*int{}
	cfg := RenderConfig{
		OutputDir: strings.TrimSpace(v.GetString("render.output_dir")),
		FontPath:  strings.TrimSpace(v.GetString("render.font_path")),
		FontSize:  fontSize,
	}
	ints["render.portrait_width"] = &cfg.PortraitWidth
	ints["render.portrait_height"] = &cfg.PortraitHeight
	ints["render.preview_width"] = &cfg.PreviewWidth
	ints["render.preview_height"] = &cfg.PreviewHeight
	ints["render.padding"] = &cfg.Padding
	ints["render.line_height"] = &cfg.LineHeight

	for key, dst := range ints {
		val, err := cast.ToIntE(v.Get(key))
		if err != nil {
			return RenderConfig{}, fmt.Errorf("invalid %s value %q: %w", key, v.GetString(key), err)
		}
		if val <= 0 {
			return RenderConfig{}, fmt.Errorf("invalid %s value %d: must be positive", key, val)
		}
		*dst = val
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = strings.TrimSpace(v.GetString("store.data_dir"))
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	return cfg, nil
}

// TurnConfig controls how turns are triggered outside the CLI.
type TurnConfig struct {
	Interval        time.Duration
	EndpointEnabled bool
	LockFile        string
}

func loadTurnConfig(v *viper.Viper) (TurnConfig, error) {
	interval, err := duration(v, "turn.interval")
	if err != nil {
		return TurnConfig{}, err
	}
	if interval < 0 {
		return TurnConfig{}, fmt.Errorf("invalid TURN_INTERVAL value %s", interval)
	}

	enabled, err := cast.ToBoolE(v.Get("turn.endpoint_enabled"))
	if err != nil {
		return TurnConfig{}, fmt.Errorf("invalid TURN_ENDPOINT_ENABLED value %q: %w", v.GetString("turn.endpoint_enabled"), err)
	}

	return TurnConfig{
		Interval:        interval,
		EndpointEnabled: enabled,
		LockFile:        strings.TrimSpace(v.GetString("turn.lock_file")),
	}, nil
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string
	Format string // json | console
}

func optionalFloat(v *viper.Viper, key string) (*float64, error) {
	raw := v.Get(key)
	if raw == nil || strings.TrimSpace(cast.ToString(raw)) == "" {
		return nil, nil
	}

	val, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, cast.ToString(raw), err)
	}
	return &val, nil
}

func optionalInt(v *viper.Viper, key string) (*int, error) {
	raw := v.Get(key)
	if raw == nil || strings.TrimSpace(cast.ToString(raw)) == "" {
		return nil, nil
	}

	val, err := cast.ToIntE(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, cast.ToString(raw), err)
	}
	return &val, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	val, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v.GetString(key), err)
	}
	return val, nil
}
