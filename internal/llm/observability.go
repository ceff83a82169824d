package llm

import (
	"github.com/rs/zerolog"
)

// CallEvent records metadata about a single LLM invocation.
type CallEvent struct {
	Task      TaskType
	Model     string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes LLM call events to a zerolog logger.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates an Observer that logs events through logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger.With().Str("component", "llm").Logger()}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	ev := o.logger.Info()
	status := "ok"
	if !event.Success {
		ev = o.logger.Warn()
		status = "err:" + event.ErrorCode
	}
	ev.Str("task", string(event.Task)).
		Str("model", event.Model).
		Int64("latency_ms", event.LatencyMs).
		Int("attempts", event.Attempts).
		Str("status", status).
		Msg("llm_call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
