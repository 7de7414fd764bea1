package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	chatsvc "github.com/zhouzirui/bot-duet/internal/service/chat"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	first, cancelFirst := hub.Subscribe(1)
	second, cancelSecond := hub.Subscribe(1)
	defer cancelSecond()

	update := Update{Bot: bot.A, LatestMessage: "hi", Count: 1}
	hub.Publish(update)

	assert.Equal(t, update, <-first)
	assert.Equal(t, update, <-second)

	cancelFirst()
	cancelFirst()
	_, open := <-first
	assert.False(t, open)
	assert.Equal(t, 1, hub.Subscribers())
}

func TestHubDropsDuplicatesAndNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Publish(Update{Bot: bot.A, LatestMessage: "one", Count: 1})
	hub.Publish(Update{Bot: bot.A, LatestMessage: "one", Count: 1})
	hub.Publish(Update{Bot: bot.B, LatestMessage: "two", Count: 1})

	assert.Equal(t, "one", (<-ch).LatestMessage)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected update %+v", extra)
	default:
	}
}

func TestSnapshotCoversBothBots(t *testing.T) {
	store := chatsvc.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), bot.B, []string{"x", "y"}))

	updates := Snapshot(context.Background(), store, zerolog.Nop())
	require.Len(t, updates, 2)
	assert.Equal(t, Update{Bot: bot.A}, updates[0])
	assert.Equal(t, Update{Bot: bot.B, LatestMessage: "y", Count: 2}, updates[1])
}

func TestWatcherPublishesOnFileReplace(t *testing.T) {
	dir := t.TempDir()
	store := chatsvc.NewFileStore(dir)
	hub := NewHub(zerolog.Nop())
	ch, cancel := hub.Subscribe(4)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWatcher(dir, store, hub, zerolog.Nop()).Run(ctx) }()

	// Wait until the watcher is registered before writing.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644)
		if err := store.Save(context.Background(), bot.A, []string{"hello"}); err != nil {
			return false
		}
		select {
		case u := <-ch:
			return u.Bot == bot.A && u.LatestMessage == "hello" && u.Count == 1
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	stop()
	require.NoError(t, <-done)
}

func TestBotForFile(t *testing.T) {
	id, ok := botForFile("/data/bot_b_message.txt")
	assert.True(t, ok)
	assert.Equal(t, bot.B, id)

	_, ok = botForFile("/data/bot_b_message.txt.tmp")
	assert.False(t, ok)
}
