package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	chatsvc "github.com/zhouzirui/bot-duet/internal/service/chat"
)

// Update is the snapshot of one bot's log pushed to feed subscribers.
type Update struct {
	Bot           bot.ID `json:"bot"`
	LatestMessage string `json:"latest_message"`
	Count         int    `json:"count"`
}

// Hub fans updates out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the update.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan Update
	nextID uint64
	last   map[bot.ID]Update
	log    zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[uint64]chan Update),
		last: make(map[bot.ID]Update, 2),
		log:  log,
	}
}

// Subscribe registers a subscriber and returns its channel and a cancel
// func that closes it.
func (h *Hub) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Update, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers u to every subscriber. An update identical to the last
// one seen for the same bot is dropped, so a turn reported both by the
// orchestrator and by the file watcher reaches clients once.
func (h *Hub) Publish(u Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.last[u.Bot]; ok && prev == u {
		return
	}
	h.last[u.Bot] = u

	for id, ch := range h.subs {
		select {
		case ch <- u:
		default:
			h.log.Warn().Uint64("subscriber", id).Str("bot", string(u.Bot)).Msg("feed subscriber lagging, update dropped")
		}
	}
}

// Subscribers reports how many subscribers are attached.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Snapshot returns the current state of both bots, degrading unreadable
// logs to empty.
func Snapshot(ctx context.Context, store chatsvc.Store, log zerolog.Logger) []Update {
	updates := make([]Update, 0, 2)
	for _, id := range bot.All() {
		messages := chatsvc.LoadSoft(ctx, store, id, log)
		updates = append(updates, Update{Bot: id, LatestMessage: messages.Latest(), Count: len(messages)})
	}
	return updates
}
