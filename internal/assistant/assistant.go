package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yabatech/campusbot/internal/conversation"
	"github.com/yabatech/campusbot/internal/knowledge"
	"github.com/yabatech/campusbot/internal/llm"
	"github.com/yabatech/campusbot/internal/prompt"
)

var (
	// ErrEmptyQuestion is returned when the chat message is empty or blank.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrEmptyTopic is returned when the guided-learning topic is empty or blank.
	ErrEmptyTopic = errors.New("topic must not be empty")
)

// Reply sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// Reply is what the caller shows the user.
type Reply struct {
	Text    string `json:"response"`
	Source  string `json:"source"`
	Failure string `json:"failure,omitempty"`
}

// Failed reports whether the reply is a fallback for a failed model call.
func (r *Reply) Failed() bool { return r.Source == SourceFallback }

// State is the request-scoped data for one chat answer. It is never stored.
type State struct {
	Knowledge *knowledge.Base
	History   conversation.History
	Question  string
	Answer    string
}

// Service answers chat questions and produces guided-learning plans.
type Service struct {
	kb        *knowledge.Base
	store     conversation.Store
	client    llm.Client
	assembler prompt.Assembler
	locks     *conversation.Locker
	observer  UseCaseObserver
}

// Options tunes a Service.
type Options struct {
	// MaxTurns caps the answered turns replayed to the model. Zero means all.
	MaxTurns int
}

// NewService wires a Service. The knowledge base is shared read-only by
// every request.
func NewService(kb *knowledge.Base, store conversation.Store, client llm.Client, opts Options, observers ...UseCaseObserver) *Service {
	return &Service{
		kb:        kb,
		store:     store,
		client:    client,
		assembler: prompt.Assembler{MaxTurns: opts.MaxTurns},
		locks:     conversation.NewLocker(),
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Ask answers message in the context of the session's history. Model
// failures do not produce an error: the reply carries a fallback text and
// the pending turn is saved without an answer.
func (s *Service) Ask(ctx context.Context, sessionKey, message string) (reply *Reply, err error) {
	start := time.Now()
	fields := map[string]any{}
	defer func() {
		if reply != nil {
			fields["source"] = reply.Source
			if reply.Failure != "" {
				fields["failure"] = reply.Failure
			}
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "assistant.ask",
			StartedAt: start,
			Duration:  time.Since(start),
			Success:   err == nil && reply != nil && !reply.Failed(),
			Err:       err,
			Fields:    fields,
		})
	}()

	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyQuestion
	}

	unlock := s.locks.Lock(sessionKey)
	defer unlock()

	history, err := s.store.Load(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	history.Begin(message)
	fields["prior_turns"] = len(history) - 1

	state := &State{Knowledge: s.kb, History: history, Question: message}
	reply = s.answer(ctx, state)

	// Saved on failure too, so the unanswered turn stays visible.
	if err := s.store.Save(context.WithoutCancel(ctx), sessionKey, state.History); err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}
	return reply, nil
}

func (s *Service) answer(ctx context.Context, state *State) *Reply {
	msgs := s.assembler.Assemble(state.Knowledge, state.History, state.Question)

	resp, err := s.client.Chat(ctx, llm.ChatRequest{Task: llm.TaskAsk, Messages: msgs})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		return &Reply{Text: chatFallback(err), Source: SourceFallback, Failure: llm.ErrorCode(err)}
	}

	if err := state.History.Complete(resp.Text); err != nil {
		// Unreachable: Ask always appends a pending turn first.
		return &Reply{Text: UnavailableFallback, Source: SourceFallback, Failure: "UNKNOWN"}
	}
	state.Answer = state.History[len(state.History)-1].Bot
	return &Reply{Text: state.Answer, Source: SourceLLM}
}

// GuidedLearning produces a three-part learning plan for topic. It does not
// read or write any conversation history.
func (s *Service) GuidedLearning(ctx context.Context, topic string) (reply *Reply, err error) {
	start := time.Now()
	defer func() {
		fields := map[string]any{}
		if reply != nil {
			fields["source"] = reply.Source
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "assistant.guided_learning",
			StartedAt: start,
			Duration:  time.Since(start),
			Success:   err == nil && reply != nil && !reply.Failed(),
			Err:       err,
			Fields:    fields,
		})
	}()

	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}

	resp, err := s.client.Chat(ctx, llm.ChatRequest{
		Task:     llm.TaskGuidedLearning,
		Messages: prompt.GuidedLearning(topic),
	})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		return &Reply{Text: GuidedLearningFallback, Source: SourceFallback, Failure: llm.ErrorCode(err)}, nil
	}
	return &Reply{Text: strings.TrimSpace(resp.Text), Source: SourceLLM}, nil
}

// History returns a copy of the session's turns.
func (s *Service) History(ctx context.Context, sessionKey string) (conversation.History, error) {
	h, err := s.store.Load(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return h, nil
}

// Reset discards the session's history.
func (s *Service) Reset(ctx context.Context, sessionKey string) error {
	unlock := s.locks.Lock(sessionKey)
	defer unlock()

	if err := s.store.Clear(ctx, sessionKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// ModelAvailable reports whether the model service answers a probe.
func (s *Service) ModelAvailable(ctx context.Context) bool {
	return s.client.Available(ctx)
}
