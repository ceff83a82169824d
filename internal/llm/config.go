package llm

import (
	"fmt"
	"strings"
	"time"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskAsk            TaskType = "ask"
	TaskGuidedLearning TaskType = "guided_learning"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the LLM subsystem.
type Config struct {
	Provider       string
	Model          string
	APIKey         string
	Endpoint       string
	TimeoutMs      int
	MaxRetries     int
	RetryBackoffMs int
	LogCalls       bool
	Tasks          map[TaskType]TaskConfig
}

const (
	defaultTemperature = 0.4
	defaultMaxTokens   = 1024
)

// DefaultConfig returns a Config matching the hosted Gemini setup:
// gemini-2.5-flash, 1024 output tokens, temperature 0.4.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderGemini,
		Model:          "gemini-2.5-flash",
		Endpoint:       "",
		TimeoutMs:      30000,
		MaxRetries:     2,
		RetryBackoffMs: 500,
		LogCalls:       true,
		Tasks: map[TaskType]TaskConfig{
			TaskAsk:            {Temperature: defaultTemperature, MaxTokens: defaultMaxTokens},
			TaskGuidedLearning: {Temperature: defaultTemperature, MaxTokens: defaultMaxTokens, TimeoutMs: 45000},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) time.Duration {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return time.Duration(tc.TimeoutMs) * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// TaskSettings returns the sampling parameters for a task. Unknown tasks get
// the package defaults.
func (c Config) TaskSettings(task TaskType) TaskConfig {
	tc, ok := c.Tasks[task]
	if !ok {
		tc.Temperature = defaultTemperature
	}
	if tc.MaxTokens <= 0 {
		tc.MaxTokens = defaultMaxTokens
	}
	return tc
}

// RetryBackoff returns the base delay between attempts.
func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// SetSampling overwrites the sampling parameters of every task while keeping
// task-specific timeouts.
func (c *Config) SetSampling(temperature float64, maxTokens int) {
	if c.Tasks == nil {
		c.Tasks = map[TaskType]TaskConfig{}
	}
	for _, task := range []TaskType{TaskAsk, TaskGuidedLearning} {
		tc := c.Tasks[task]
		tc.Temperature = temperature
		tc.MaxTokens = maxTokens
		c.Tasks[task] = tc
	}
}

// SetTaskTimeout overrides the timeout of a single task. Non-positive values
// are ignored.
func (c *Config) SetTaskTimeout(task TaskType, d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Tasks == nil {
		c.Tasks = map[TaskType]TaskConfig{}
	}
	tc := c.Tasks[task]
	tc.TimeoutMs = int(d / time.Millisecond)
	c.Tasks[task] = tc
}

// Validate checks the provider-independent fields. Credential checks happen
// when the provider client is built.
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderGemini, ProviderOllama:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, c.Provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("llm model must not be empty")
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %dms", c.TimeoutMs)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("llm max retries must not be negative, got %d", c.MaxRetries)
	}
	for task, tc := range c.Tasks {
		if tc.Temperature < 0 || tc.Temperature > 2 {
			return fmt.Errorf("llm temperature for %s must be within [0, 2], got %g", task, tc.Temperature)
		}
	}
	return nil
}
