package chat

import (
	"fmt"

	"github.com/zhouzirui/bot-duet/internal/config"
)

// Open builds the Store selected by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile, "":
		return NewFileStore(cfg.DataDir), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
}
