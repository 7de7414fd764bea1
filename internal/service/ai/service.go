package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/config"
	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
)

// ErrCompletionFailure covers upstream errors, timeouts and empty replies.
var ErrCompletionFailure = errors.New("completion failed")

const (
	defaultTemperature = 0.8
	defaultMaxTokens   = 150
	defaultTimeout     = 30 * time.Second
)

// Options tunes sampling and the per-call deadline.
type Options struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OptionsFromConfig maps AI configuration onto Options, filling defaults.
func OptionsFromConfig(cfg config.AIConfig) Options {
	opts := Options{
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Timeout:     cfg.Timeout,
		Logger:      zerolog.Nop(),
	}
	if cfg.Temperature != nil {
		opts.Temperature = float32(*cfg.Temperature)
	}
	if cfg.MaxTokens != nil {
		opts.MaxTokens = *cfg.MaxTokens
	}
	return opts
}

// Service generates one utterance per call through an eino chain.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	opts    Options
	log     zerolog.Logger
	callOps []compose.Option
}

// NewService builds the Ark chat model from cfg and wraps it in a Service.
func NewService(ctx context.Context, cfg config.AIConfig, log zerolog.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	opts := OptionsFromConfig(cfg)
	opts.Logger = log
	return NewServiceWithModel(ctx, chatModel, opts)
}

// NewServiceWithModel compiles the prompt chain around chatModel.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, opts Options) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{instruction}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chain: runnable,
		opts:  opts,
		log:   opts.Logger.With().Str("component", "ai").Logger(),
		callOps: []compose.Option{
			compose.WithChatModelOption(
				model.WithTemperature(opts.Temperature),
				model.WithMaxTokens(opts.MaxTokens),
			),
		},
	}, nil
}

// GenerateUtterance asks the model for speaker's next line given the
// persona prompt and the replayed transcript.
func (s *Service) GenerateUtterance(ctx context.Context, systemPrompt string, transcript []chat.Entry, speaker bot.ID) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	input := map[string]any{
		"system":      systemPrompt,
		"history":     buildHistoryMessages(transcript),
		"instruction": RoleInstruction(speaker),
	}

	started := time.Now()
	response, err := s.chain.Invoke(ctx, input, s.callOps...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %w", ErrCompletionFailure, ctxErr)
		}
		return "", fmt.Errorf("%w: run chat chain: %w", ErrCompletionFailure, err)
	}
	if response == nil {
		return "", fmt.Errorf("%w: model returned no message", ErrCompletionFailure)
	}

	utterance := strings.TrimSpace(response.Content)
	if utterance == "" {
		return "", fmt.Errorf("%w: model returned empty content", ErrCompletionFailure)
	}

	s.log.Debug().
		Str("bot", string(speaker)).
		Int("history", len(transcript)).
		Int("length", len(utterance)).
		Dur("elapsed", time.Since(started)).
		Msg("utterance generated")
	return utterance, nil
}

func buildHistoryMessages(transcript []chat.Entry) []*schema.Message {
	if len(transcript) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(transcript))
	for _, entry := range transcript {
		switch entry.Role {
		case "user":
			history = append(history, schema.UserMessage(entry.Content))
		default:
			history = append(history, schema.AssistantMessage(entry.Content, nil))
		}
	}
	return history
}
