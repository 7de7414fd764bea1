package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/bot-duet/internal/config"
	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
)

type echoGenerator struct{}

func (echoGenerator) GenerateUtterance(_ context.Context, _ string, _ []chat.Entry, speaker bot.ID) (string, error) {
	return speaker.Label() + " says hi", nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("STORE_BACKEND", "file")
	for _, key := range []string{"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL", "Model", "TURN_LOCK_FILE", "FONT_PATH", "PROMPT_DIR"} {
		t.Setenv(key, "")
	}
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	return cfg
}

func TestTurnRunnerEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Store.DataDir, bot.A.PromptFile()), []byte("prompt a"), 0o644))

	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	updates, cancel := a.Hub.Subscribe(2)
	defer cancel()

	runner, err := a.TurnRunner(echoGenerator{})
	require.NoError(t, err)

	result, err := runner.RunTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bot.A, result.Turn.Speaker)

	for _, id := range bot.All() {
		_, err := os.Stat(filepath.Join(cfg.Render.OutputDir, id.PortraitFile()))
		assert.NoError(t, err, "portrait for %s", id)
	}
	_, err = os.Stat(filepath.Join(cfg.Store.DataDir, bot.A.MessageFile()))
	assert.NoError(t, err)

	u := <-updates
	assert.Equal(t, "Bot A says hi", u.LatestMessage)
	assert.True(t, a.WatchesFiles())
}

func TestNewGeneratorRequiresCredentials(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = a.NewGenerator(context.Background())
	assert.Error(t, err)
}
