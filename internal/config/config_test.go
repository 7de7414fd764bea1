package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.8, *cfg.AI.Temperature, 1e-9)
	require.NotNil(t, cfg.AI.MaxTokens)
	assert.Equal(t, 150, *cfg.AI.MaxTokens)
	assert.Nil(t, cfg.AI.TopP)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.AI.Enabled())

	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, ".", cfg.Store.DataDir)
	assert.Equal(t, ".", cfg.Store.PromptDir)
	assert.Equal(t, ".", cfg.Render.OutputDir)
	assert.Equal(t, 800, cfg.Render.PreviewWidth)
	assert.Equal(t, 400, cfg.Render.PreviewHeight)
	assert.Equal(t, 30, cfg.Render.LineHeight)
	assert.Equal(t, time.Duration(0), cfg.Turn.Interval)
	assert.False(t, cfg.Turn.EndpointEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_MODEL", "doubao-pro")
	t.Setenv("ARK_TEMPERATURE", "0.5")
	t.Setenv("COMPLETION_TIMEOUT", "5s")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("DATA_DIR", "/tmp/duet")
	t.Setenv("TURN_INTERVAL", "10m")
	t.Setenv("TURN_ENDPOINT_ENABLED", "true")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	assert.InDelta(t, 0.5, *cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "/tmp/duet", cfg.Store.PromptDir)
	assert.Equal(t, "/tmp/duet", cfg.Render.OutputDir)
	assert.Equal(t, 10*time.Minute, cfg.Turn.Interval)
	assert.True(t, cfg.Turn.EndpointEnabled)
}

func TestLegacyModelVariable(t *testing.T) {
	t.Setenv("Model", "legacy-model")
	t.Setenv("ARK_API_KEY", "key")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "legacy-model", cfg.AI.Model)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"ARK_TEMPERATURE": "warm",
		"ARK_MAX_TOKENS":  "many",
		"STORE_BACKEND":   "redis",
		"PORT":            "80 80",
		"TURN_INTERVAL":   "soon",
		"PREVIEW_WIDTH":   "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadFile("")
			assert.Error(t, err)
		})
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "duet.yaml")
	content := `
store:
  backend: memory
  data_dir: /var/lib/duet
render:
  font_path: /fonts/NotoSansCJK.otf
  font_size: 24
ai:
  max_tokens: 64
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/duet", cfg.Store.DataDir)
	assert.Equal(t, "/fonts/NotoSansCJK.otf", cfg.Render.FontPath)
	assert.InDelta(t, 24.0, cfg.Render.FontSize, 1e-9)
	assert.Equal(t, 64, *cfg.AI.MaxTokens)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
