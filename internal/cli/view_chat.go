package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yabatech/campusbot/internal/assistant"
	"github.com/yabatech/campusbot/internal/cli/formatter"
	"github.com/yabatech/campusbot/internal/conversation"
)

type replyMsg struct {
	reply *assistant.Reply
	err   error
}

type resetMsg struct {
	err error
}

// chatView is the interactive multi-turn chat. Model calls run as tea.Cmds
// so the view keeps rendering while the assistant thinks.
type chatView struct {
	ctx        context.Context
	svc        Assistant
	sessionKey string
	input      textinput.Model

	messages []string
	waiting  bool
}

func newChatView(ctx context.Context, svc Assistant, sessionKey string, prior conversation.History) *chatView {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 2000

	v := &chatView{
		ctx:        ctx,
		svc:        svc,
		sessionKey: sessionKey,
		input:      ti,
	}

	v.messages = append(v.messages, formatter.FormatChatWelcome())
	for _, turn := range prior.Answered() {
		v.messages = append(v.messages,
			formatter.FormatUserLine(turn.User),
			formatter.FormatBotLine(&assistant.Reply{Text: turn.Bot, Source: assistant.SourceLLM}),
		)
	}
	return v
}

func (v *chatView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *chatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			return v, tea.Quit
		case tea.KeyEnter:
			if v.waiting {
				return v, nil
			}
			input := strings.TrimSpace(v.input.Value())
			v.input.Reset()
			if input == "" {
				return v, nil
			}
			return v.handleInput(input)
		}

	case replyMsg:
		v.waiting = false
		if msg.err != nil {
			v.messages = append(v.messages, formatter.FormatError(msg.err))
		} else {
			v.messages = append(v.messages, formatter.FormatBotLine(msg.reply))
		}
		return v, nil

	case resetMsg:
		v.waiting = false
		if msg.err != nil {
			v.messages = append(v.messages, formatter.FormatError(msg.err))
		} else {
			v.messages = append(v.messages, formatter.FormatNotice("History cleared. Starting a new conversation."))
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *chatView) View() string {
	var b strings.Builder

	for _, msg := range v.messages {
		b.WriteString(msg)
		b.WriteString("\n")
	}

	if v.waiting {
		b.WriteString(formatter.Dim("  thinking...") + "\n")
	}

	b.WriteString(formatter.StylePurple.Render("ask") + formatter.Dim("> "))
	b.WriteString(v.input.View())

	return b.String()
}

func (v *chatView) handleInput(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(input) {
	case "/quit", "/exit", "/q":
		return v, tea.Quit
	case "/reset":
		v.waiting = true
		return v, v.reset()
	}

	v.messages = append(v.messages, formatter.FormatUserLine(input))
	v.waiting = true
	return v, v.ask(input)
}

func (v *chatView) ask(question string) tea.Cmd {
	return func() tea.Msg {
		reply, err := v.svc.Ask(v.ctx, v.sessionKey, question)
		return replyMsg{reply: reply, err: err}
	}
}

func (v *chatView) reset() tea.Cmd {
	return func() tea.Msg {
		return resetMsg{err: v.svc.Reset(v.ctx, v.sessionKey)}
	}
}
