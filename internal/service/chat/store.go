package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
)

var (
	ErrReadFailure  = errors.New("message log read failed")
	ErrWriteFailure = errors.New("message log write failed")
	ErrUnknownBot   = errors.New("unknown bot")
)

// Status distinguishes a log that was never written from one that exists.
type Status int

const (
	Absent Status = iota
	Present
)

func (s Status) String() string {
	if s == Present {
		return "present"
	}
	return "absent"
}

// LoadResult is what a Store returns for one bot.
type LoadResult struct {
	Messages chat.Log
	Status   Status
}

// Store persists the capped message log of each bot. Save always replaces
// the whole log so readers never observe a partial write.
type Store interface {
	Load(ctx context.Context, id bot.ID) (LoadResult, error)
	Save(ctx context.Context, id bot.ID, messages []string) error
}

// LoadSoft loads a log and degrades read failures to an empty log.
func LoadSoft(ctx context.Context, store Store, id bot.ID, log zerolog.Logger) chat.Log {
	result, err := store.Load(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("bot", string(id)).Msg("message log unreadable, continuing with empty history")
		return chat.Log{}
	}
	if result.Messages == nil {
		return chat.Log{}
	}
	return result.Messages
}

func checkBot(id bot.ID) error {
	if !id.Valid() {
		return ErrUnknownBot
	}
	return nil
}
