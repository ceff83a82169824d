package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yabatech/campusbot/internal/assistant"
	"github.com/yabatech/campusbot/internal/conversation"
)

type askCall struct {
	sessionKey string
	message    string
}

// stubAssistant answers every question with a fixed reply and records calls.
type stubAssistant struct {
	mu       sync.Mutex
	reply    *assistant.Reply
	err      error
	history  conversation.History
	asks     []askCall
	topics   []string
	resets   []string
	resetErr error
}

func newStubAssistant(text string) *stubAssistant {
	return &stubAssistant{reply: &assistant.Reply{Text: text, Source: assistant.SourceLLM}}
}

func (s *stubAssistant) Ask(_ context.Context, sessionKey, message string) (*assistant.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asks = append(s.asks, askCall{sessionKey: sessionKey, message: message})
	if strings.TrimSpace(message) == "" {
		return nil, assistant.ErrEmptyQuestion
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func (s *stubAssistant) GuidedLearning(_ context.Context, topic string) (*assistant.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	if strings.TrimSpace(topic) == "" {
		return nil, assistant.ErrEmptyTopic
	}
	return s.reply, nil
}

func (s *stubAssistant) History(context.Context, string) (conversation.History, error) {
	return s.history.Clone(), nil
}

func (s *stubAssistant) Reset(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, sessionKey)
	return s.resetErr
}

func (s *stubAssistant) calls() []askCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]askCall(nil), s.asks...)
}

type stubRunner struct {
	ran bool
	err error
}

func (r *stubRunner) Run(ctx context.Context) error {
	r.ran = true
	return r.err
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestAskCmd_PrintsReply(t *testing.T) {
	stub := newStubAssistant("Yabatech offers ND and HND programmes.")
	app := &App{Assistant: stub}

	out, err := executeCmd(t, app, "ask", "what", "programmes", "are", "offered?")
	require.NoError(t, err)

	assert.Equal(t, "Yabatech offers ND and HND programmes.\n", out)
	calls := stub.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "what programmes are offered?", calls[0].message)
	assert.True(t, conversation.ValidSessionKey(calls[0].sessionKey))
}

func TestAskCmd_FreshSessionEachRun(t *testing.T) {
	stub := newStubAssistant("ok")
	app := &App{Assistant: stub}

	_, err := executeCmd(t, app, "ask", "first")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "ask", "second")
	require.NoError(t, err)

	calls := stub.calls()
	require.Len(t, calls, 2)
	assert.NotEqual(t, calls[0].sessionKey, calls[1].sessionKey)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, err := executeCmd(t, &App{Assistant: newStubAssistant("ok")}, "ask")
	assert.Error(t, err)
}

func TestAskCmd_BlankQuestion(t *testing.T) {
	_, err := executeCmd(t, &App{Assistant: newStubAssistant("ok")}, "ask", "   ")
	assert.ErrorIs(t, err, assistant.ErrEmptyQuestion)
}

func TestAskCmd_FallbackReplyIsPrinted(t *testing.T) {
	stub := &stubAssistant{reply: &assistant.Reply{
		Text:    assistant.TimeoutFallback,
		Source:  assistant.SourceFallback,
		Failure: "TIMEOUT",
	}}

	out, err := executeCmd(t, &App{Assistant: stub}, "ask", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, assistant.TimeoutFallback)
}

func TestPlanCmd_TopicFromArgs(t *testing.T) {
	stub := newStubAssistant("1. Introduction")
	out, err := executeCmd(t, &App{Assistant: stub}, "plan", "renewable", "energy")
	require.NoError(t, err)

	assert.Equal(t, "1. Introduction\n", out)
	assert.Equal(t, []string{"renewable energy"}, stub.topics)
}

func TestPlanCmd_NoTopicNonInteractive(t *testing.T) {
	stub := newStubAssistant("unused")
	prompted := false
	app := &App{
		Assistant:     stub,
		IsInteractive: func() bool { return false },
		PromptTopic: func() (string, error) {
			prompted = true
			return "x", nil
		},
	}

	_, err := executeCmd(t, app, "plan")
	assert.ErrorIs(t, err, assistant.ErrEmptyTopic)
	assert.False(t, prompted)
}

func TestPlanCmd_PromptsWhenInteractive(t *testing.T) {
	stub := newStubAssistant("plan")
	app := &App{
		Assistant:     stub,
		IsInteractive: func() bool { return true },
		PromptTopic:   func() (string, error) { return "marine engineering", nil },
	}

	_, err := executeCmd(t, app, "plan")
	require.NoError(t, err)
	assert.Equal(t, []string{"marine engineering"}, stub.topics)
}

func TestPlanCmd_PromptError(t *testing.T) {
	stub := newStubAssistant("plan")
	app := &App{
		Assistant:     stub,
		IsInteractive: func() bool { return true },
		PromptTopic:   func() (string, error) { return "", errors.New("cancelled") },
	}

	_, err := executeCmd(t, app, "plan")
	assert.EqualError(t, err, "cancelled")
	assert.Empty(t, stub.topics)
}

func TestServeCmd_PassesAddr(t *testing.T) {
	runner := &stubRunner{}
	var gotAddr string
	app := &App{
		Assistant: newStubAssistant("ok"),
		NewServer: func(addr string) Runner {
			gotAddr = addr
			return runner
		},
	}

	_, err := executeCmd(t, app, "serve", "--addr", "127.0.0.1:4100")
	require.NoError(t, err)
	assert.True(t, runner.ran)
	assert.Equal(t, "127.0.0.1:4100", gotAddr)
}

func TestServeCmd_DefaultAddr(t *testing.T) {
	gotAddr := "unset"
	app := &App{
		Assistant: newStubAssistant("ok"),
		NewServer: func(addr string) Runner {
			gotAddr = addr
			return &stubRunner{}
		},
	}

	_, err := executeCmd(t, app, "serve")
	require.NoError(t, err)
	assert.Empty(t, gotAddr)
}

func TestServeCmd_RunError(t *testing.T) {
	app := &App{
		Assistant: newStubAssistant("ok"),
		NewServer: func(string) Runner { return &stubRunner{err: errors.New("address in use")} },
	}

	_, err := executeCmd(t, app, "serve")
	assert.EqualError(t, err, "address in use")
}

func TestServeCmd_NotConfigured(t *testing.T) {
	_, err := executeCmd(t, &App{Assistant: newStubAssistant("ok")}, "serve")
	assert.Error(t, err)
}

func TestBootstrap_ReceivesConfigFlag(t *testing.T) {
	stub := newStubAssistant("wired")
	var got BootstrapOptions
	app := &App{
		Bootstrap: func(a *App, opts BootstrapOptions) error {
			got = opts
			a.Assistant = stub
			return nil
		},
	}

	out, err := executeCmd(t, app, "ask", "hi", "--config", "/etc/campusbot.yaml")
	require.NoError(t, err)
	assert.Equal(t, BootstrapOptions{ConfigFile: "/etc/campusbot.yaml", Command: "ask"}, got)
	assert.Equal(t, "wired\n", out)
}

func TestBootstrap_ErrorStopsCommand(t *testing.T) {
	app := &App{
		Bootstrap: func(*App, BootstrapOptions) error { return errors.New("missing GEMINI_API_KEY") },
	}

	_, err := executeCmd(t, app, "ask", "hi")
	assert.EqualError(t, err, "missing GEMINI_API_KEY")
}

func TestBootstrap_MustProvideAssistant(t *testing.T) {
	app := &App{Bootstrap: func(*App, BootstrapOptions) error { return nil }}

	_, err := executeCmd(t, app, "ask", "hi")
	assert.Error(t, err)
}

func TestBootstrap_SkippedWhenAlreadyWired(t *testing.T) {
	called := false
	app := &App{
		Assistant: newStubAssistant("ok"),
		Bootstrap: func(*App, BootstrapOptions) error {
			called = true
			return nil
		},
	}

	_, err := executeCmd(t, app, "ask", "hi")
	require.NoError(t, err)
	assert.False(t, called)
}

func TestChatCmd_RequiresTerminal(t *testing.T) {
	app := &App{Assistant: newStubAssistant("ok"), IsInteractive: func() bool { return false }}

	_, err := executeCmd(t, app, "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestChatCmd_InvalidSessionKey(t *testing.T) {
	app := &App{Assistant: newStubAssistant("ok"), IsInteractive: func() bool { return true }}

	_, err := executeCmd(t, app, "chat", "--session", "not-a-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session key")
}
