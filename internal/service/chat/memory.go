package chat

import (
	"context"
	"sync"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
)

// MemoryStore keeps logs in process memory, suitable for tests and demos.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[bot.ID]string
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[bot.ID]string, 2)}
}

// Load returns the stored log for id.
func (s *MemoryStore) Load(_ context.Context, id bot.ID) (LoadResult, error) {
	if err := checkBot(id); err != nil {
		return LoadResult{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.logs[id]
	if !ok {
		return LoadResult{Messages: chat.Log{}, Status: Absent}, nil
	}
	return LoadResult{Messages: chat.ParseLog(blob), Status: Present}, nil
}

// Save replaces the stored log for id with the last entries of messages.
func (s *MemoryStore) Save(_ context.Context, id bot.ID, messages []string) error {
	if err := checkBot(id); err != nil {
		return err
	}

	s.mu.Lock()
	s.logs[id] = chat.FormatLog(messages)
	s.mu.Unlock()
	return nil
}
