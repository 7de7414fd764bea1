package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// FileStore keeps each log in bot_<x>_message.txt under dir.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir is the directory holding the log files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the log file location for id.
func (s *FileStore) Path(id bot.ID) string {
	return filepath.Join(s.dir, id.MessageFile())
}

// Load reads and parses the log file. A missing file is Absent, not an error.
func (s *FileStore) Load(_ context.Context, id bot.ID) (LoadResult, error) {
	if err := checkBot(id); err != nil {
		return LoadResult{}, err
	}

	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadResult{Messages: chat.Log{}, Status: Absent}, nil
		}
		return LoadResult{}, fmt.Errorf("%w: %s: %w", ErrReadFailure, id.MessageFile(), err)
	}

	return LoadResult{Messages: chat.ParseLog(string(data)), Status: Present}, nil
}

// Save writes the formatted log through a temp file and renames it over the
// previous one.
func (s *FileStore) Save(_ context.Context, id bot.ID, messages []string) error {
	if err := checkBot(id); err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(s.Path(id), []byte(chat.FormatLog(messages)), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailure, id.MessageFile(), err)
	}
	return nil
}
