package formatter

import (
	"fmt"
	"strings"

	"github.com/yabatech/campusbot/internal/assistant"
)

const replyWrapWidth = 88

// FormatReply renders an assistant reply for terminal output. Unstyled
// output is the reply text as-is so it can be piped.
func FormatReply(title string, reply *assistant.Reply, styled bool) string {
	if !styled {
		return strings.TrimRight(reply.Text, "\n") + "\n"
	}

	var b strings.Builder
	b.WriteString(indentWrapped(reply.Text, 2, replyWrapWidth))
	b.WriteString("\n")
	if reply.Failed() {
		b.WriteString(fmt.Sprintf("\n  %s\n", StyleYellow.Render("[model unavailable: "+reply.Failure+"]")))
	}
	return RenderBox(title, b.String()) + "\n"
}

// FormatChatWelcome renders the banner shown when the interactive chat opens.
func FormatChatWelcome() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(StylePurple.Render("  campusbot") + StyleDim.Render(" Yabatech assistant"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  ─────────────────────────────") + "\n\n")
	b.WriteString(StyleDim.Render("  Ask about admissions, departments, fees and campus life.") + "\n")
	b.WriteString(StyleDim.Render("  Type /reset to start over, /quit to exit.") + "\n")
	return b.String()
}

// FormatUserLine renders the student's side of a chat exchange.
func FormatUserLine(text string) string {
	return Dim("You: ") + text
}

// FormatBotLine renders the assistant's side of a chat exchange.
func FormatBotLine(reply *assistant.Reply) string {
	label := StylePurple.Render("campusbot") + Dim(": ")
	if reply.Failed() {
		return label + StyleYellow.Render(reply.Text)
	}
	return label + "\n" + indentWrapped(reply.Text, 2, replyWrapWidth)
}

// FormatNotice renders a one-line status message such as a reset
// confirmation.
func FormatNotice(text string) string {
	return StyleGreen.Render("✓ ") + Dim(text)
}

// FormatError renders a one-line error inside the chat view.
func FormatError(err error) string {
	return StyleRed.Render("✗ ") + err.Error()
}
