package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// ChatRequest holds the parameters for an LLM chat call.
type ChatRequest struct {
	Task        TaskType
	Messages    []Message
	Temperature *float64 // nil uses task default
	MaxTokens   *int     // nil uses task default
}

// ChatResponse holds the result of an LLM chat call.
type ChatResponse struct {
	Text      string
	Model     string
	LatencyMs int64
	Attempts  int
}

// Client provides access to a language model for text generation.
type Client interface {
	// Chat sends the ordered message sequence and returns the raw reply.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Available checks whether the model service is reachable.
	Available(ctx context.Context) bool

	// Close releases provider resources.
	Close() error
}

// sampling is the resolved per-call generation settings handed to a provider.
type sampling struct {
	Temperature float64
	MaxTokens   int
}

// provider is one model backend. It performs a single attempt; retries,
// timeouts and observation live in client.
type provider interface {
	send(ctx context.Context, msgs []Message, s sampling) (string, error)
	ping(ctx context.Context) bool
	close() error
}

// NewClient builds the Client selected by cfg.Provider. Misconfiguration,
// including an empty credential for hosted providers, fails here rather than
// on the first call.
func NewClient(ctx context.Context, cfg Config, observer Observer) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		p   provider
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		p, err = newGeminiProvider(ctx, cfg)
	case ProviderOllama:
		p = newOllamaProvider(cfg)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return newClient(cfg, p, observer), nil
}

// client implements Client on top of a provider.
type client struct {
	cfg      Config
	provider provider
	observer Observer
}

func newClient(cfg Config, p provider, observer Observer) *client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &client{cfg: cfg, provider: p, observer: observer}
}

func (c *client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("%w: no messages to send", ErrInvocation)
	}

	start := time.Now()

	taskCfg := c.cfg.TaskSettings(req.Task)
	s := sampling{Temperature: taskCfg.Temperature, MaxTokens: taskCfg.MaxTokens}
	if req.Temperature != nil {
		s.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		s.MaxTokens = *req.MaxTokens
	}
	timeout := c.cfg.TaskTimeout(req.Task)

	var (
		text     string
		lastErr  error
		attempts int
	)

	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxRetries), retry.NewExponential(c.cfg.RetryBackoff()))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		out, err := c.provider.send(attemptCtx, req.Messages, s)
		if err == nil && strings.TrimSpace(out) == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			lastErr = classify(err)
			// Don't retry once the caller's context is gone.
			if ctx.Err() != nil || !retryable(lastErr) {
				return lastErr
			}
			return retry.RetryableError(lastErr)
		}
		text = out
		return nil
	})

	latency := time.Since(start).Milliseconds()
	if err == nil {
		c.observer.OnCallComplete(CallEvent{
			Task:      req.Task,
			Model:     c.cfg.Model,
			LatencyMs: latency,
			Attempts:  attempts,
			Success:   true,
		})
		return &ChatResponse{
			Text:      text,
			Model:     c.cfg.Model,
			LatencyMs: latency,
			Attempts:  attempts,
		}, nil
	}

	if lastErr == nil {
		lastErr = classify(err)
	}
	final := finalError(lastErr)
	c.observer.OnCallComplete(CallEvent{
		Task:      req.Task,
		Model:     c.cfg.Model,
		LatencyMs: latency,
		Attempts:  attempts,
		Success:   false,
		ErrorCode: ErrorCode(final),
	})
	return nil, final
}

// finalError tags a classified error with ErrInvocation. Permanent client
// errors are reported as rejections; anything else left over after the
// retry loop is reported as retry exhaustion.
func finalError(err error) error {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrRateLimited), errors.Is(err, ErrEmptyResponse):
		return fmt.Errorf("%w: %w", ErrInvocation, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrInvocation, err)
	case !retryable(err):
		return fmt.Errorf("%w: %w: %v", ErrInvocation, ErrRejected, err)
	default:
		return fmt.Errorf("%w: %w: %v", ErrInvocation, ErrRetryExhausted, err)
	}
}

func (c *client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.provider.ping(ctx)
}

func (c *client) Close() error {
	return c.provider.close()
}
