package persona

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
)

// ErrPromptNotFound is returned when no prompt exists for a bot.
var ErrPromptNotFound = errors.New("system prompt not found")

// Store exposes system prompt retrieval to the orchestrator.
type Store interface {
	Prompt(ctx context.Context, id bot.ID) (string, error)
}

// MemoryStore implements Store with an in-memory map.
type MemoryStore struct {
	items map[bot.ID]Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	store := &MemoryStore{items: make(map[bot.ID]Persona, len(items))}
	for _, item := range items {
		store.items[item.Bot] = item
	}
	return store
}

// Prompt looks up the system prompt for id.
func (s *MemoryStore) Prompt(_ context.Context, id bot.ID) (string, error) {
	item, ok := s.items[id]
	if !ok {
		return "", fmt.Errorf("bot %s: %w", id, ErrPromptNotFound)
	}
	return item.SystemPrompt, nil
}

// FileStore reads systemprompt_a.txt / systemprompt_b.txt from a directory.
// Prompts are immutable for the process lifetime, so each file is read once.
type FileStore struct {
	dir string

	mu     sync.Mutex
	cached map[bot.ID]string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, cached: make(map[bot.ID]string, 2)}
}

// Prompt returns the file contents for id. A missing file maps to ErrPromptNotFound.
func (s *FileStore) Prompt(_ context.Context, id bot.ID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prompt, ok := s.cached[id]; ok {
		return prompt, nil
	}

	path := filepath.Join(s.dir, id.PromptFile())
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, ErrPromptNotFound)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	prompt := string(data)
	s.cached[id] = prompt
	return prompt, nil
}
