package feed

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	chatsvc "github.com/zhouzirui/bot-duet/internal/service/chat"
)

// Watcher publishes an update whenever a message file in the data directory
// is replaced, which also covers turns run by another process (cmd/turn).
type Watcher struct {
	dir   string
	store chatsvc.Store
	hub   *Hub
	log   zerolog.Logger
}

// NewWatcher watches dir and reads changed logs through store.
func NewWatcher(dir string, store chatsvc.Store, hub *Hub, log zerolog.Logger) *Watcher {
	return &Watcher{dir: dir, store: store, hub: hub, log: log}
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info().Str("dir", w.dir).Msg("feed watcher started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			id, matched := botForFile(event.Name)
			if !matched || !(event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				continue
			}
			w.publish(ctx, id)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("feed watcher error")
		}
	}
}

func (w *Watcher) publish(ctx context.Context, id bot.ID) {
	result, err := w.store.Load(ctx, id)
	if err != nil {
		w.log.Warn().Err(err).Str("bot", string(id)).Msg("changed message log unreadable")
		return
	}
	w.hub.Publish(Update{Bot: id, LatestMessage: result.Messages.Latest(), Count: len(result.Messages)})
}

func botForFile(path string) (bot.ID, bool) {
	name := filepath.Base(path)
	for _, id := range bot.All() {
		if id.MessageFile() == name {
			return id, true
		}
	}
	return "", false
}
