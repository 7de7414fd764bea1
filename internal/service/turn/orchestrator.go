package turn

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
	"github.com/zhouzirui/bot-duet/internal/model/persona"
	chatsvc "github.com/zhouzirui/bot-duet/internal/service/chat"
	"github.com/zhouzirui/bot-duet/internal/service/feed"
)

// Generator 生成下一句发言，生产环境由 ai.Service 实现。
type Generator interface {
	GenerateUtterance(ctx context.Context, systemPrompt string, transcript []chat.Entry, speaker bot.ID) (string, error)
}

// PortraitWriter 负责为某个 bot 输出最新消息的图片。
type PortraitWriter interface {
	WritePortrait(ctx context.Context, id bot.ID, text string) error
}

// Publisher 接收每轮成功后的最新状态。
type Publisher interface {
	Publish(u feed.Update)
}

// Runner runs a single turn.
type Runner interface {
	RunTurn(ctx context.Context) (*Result, error)
}

// Deps 是编排器的依赖集合。Publisher 可为空。
type Deps struct {
	Messages  chatsvc.Store
	Prompts   persona.Store
	Generator Generator
	Portraits PortraitWriter
	Publisher Publisher
	Logger    zerolog.Logger
}

// Result 描述一次成功的轮次。
type Result struct {
	RunID  string
	Turn   chat.Turn
	States []State
	// RenderErr is set when portraits could not be written; the turn still
	// counts as complete because the message was saved.
	RenderErr error
}

// Orchestrator drives one turn through loading, selecting, generating,
// persisting and rendering. It keeps no state between runs.
type Orchestrator struct {
	deps Deps
}

// NewOrchestrator validates deps and returns an Orchestrator.
func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Messages == nil:
		return nil, errors.New("message store is required")
	case deps.Prompts == nil:
		return nil, errors.New("prompt store is required")
	case deps.Generator == nil:
		return nil, errors.New("generator is required")
	case deps.Portraits == nil:
		return nil, errors.New("portrait writer is required")
	}
	return &Orchestrator{deps: deps}, nil
}

type snapshot struct {
	logs    map[bot.ID]chat.Log
	prompts map[bot.ID]string
}

type run struct {
	id     string
	log    zerolog.Logger
	states []State
}

func (r *run) enter(state State) {
	r.states = append(r.states, state)
	r.log.Debug().Str("state", string(state)).Msg("turn state")
}

func (r *run) fail(state State, err error) error {
	r.states = append(r.states, StateFailed)
	r.log.Error().Err(err).Str("state", string(state)).Msg("turn failed")
	return &StageError{State: state, Err: err}
}

// RunTurn executes one turn. Errors are *StageError values wrapping the
// failing component's sentinel; nothing is persisted when generation fails.
func (o *Orchestrator) RunTurn(ctx context.Context) (*Result, error) {
	r := &run{id: uuid.NewString()}
	r.log = o.deps.Logger.With().Str("run_id", r.id).Logger()
	started := time.Now()

	r.enter(StateLoading)
	snap := o.load(ctx, r.log)

	r.enter(StateSelecting)
	aLog, bLog := snap.logs[bot.A], snap.logs[bot.B]
	speaker := NextSpeaker(aLog, bLog)
	r.log.Info().Str("bot", string(speaker)).Int("a_count", len(aLog)).Int("b_count", len(bLog)).Msg("speaker selected")

	r.enter(StateGenerating)
	utterance, err := o.deps.Generator.GenerateUtterance(ctx, snap.prompts[speaker], BuildTranscript(aLog, bLog), speaker)
	if err != nil {
		return nil, r.fail(StateGenerating, err)
	}

	r.enter(StatePersisting)
	updated := snap.logs[speaker].Append(utterance)
	if err := o.deps.Messages.Save(ctx, speaker, updated); err != nil {
		return nil, r.fail(StatePersisting, err)
	}
	utterance = updated.Latest()

	r.enter(StateRendering)
	latest := map[bot.ID]string{
		speaker:         utterance,
		speaker.Other(): snap.logs[speaker.Other()].Latest(),
	}
	renderErr := o.render(ctx, r.log, latest)

	if o.deps.Publisher != nil {
		o.deps.Publisher.Publish(feed.Update{Bot: speaker, LatestMessage: utterance, Count: len(updated)})
	}

	r.enter(StateDone)
	r.log.Info().Str("bot", string(speaker)).Dur("elapsed", time.Since(started)).Msg("turn completed")

	return &Result{
		RunID:     r.id,
		Turn:      chat.Turn{Speaker: speaker, Utterance: utterance},
		States:    r.states,
		RenderErr: renderErr,
	}, nil
}

// load reads both logs and both prompts concurrently. Every failure degrades
// to an empty value.
func (o *Orchestrator) load(ctx context.Context, log zerolog.Logger) snapshot {
	ids := bot.All()
	logs := make([]chat.Log, len(ids))
	prompts := make([]string, len(ids))

	var wg conc.WaitGroup
	for i, id := range ids {
		wg.Go(func() {
			logs[i] = chatsvc.LoadSoft(ctx, o.deps.Messages, id, log)
		})
		wg.Go(func() {
			prompt, err := o.deps.Prompts.Prompt(ctx, id)
			if err != nil {
				log.Warn().Err(err).Str("bot", string(id)).Msg("system prompt unavailable, using empty prompt")
				return
			}
			prompts[i] = prompt
		})
	}
	wg.Wait()

	snap := snapshot{
		logs:    make(map[bot.ID]chat.Log, len(ids)),
		prompts: make(map[bot.ID]string, len(ids)),
	}
	for i, id := range ids {
		snap.logs[id] = logs[i]
		snap.prompts[id] = prompts[i]
	}
	return snap
}

func (o *Orchestrator) render(ctx context.Context, log zerolog.Logger, latest map[bot.ID]string) error {
	var errs []error
	for _, id := range bot.All() {
		if err := o.deps.Portraits.WritePortrait(ctx, id, latest[id]); err != nil {
			log.Warn().Err(err).Str("bot", string(id)).Msg("portrait not written")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
