package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yabatech/campusbot/internal/assistant"
	"github.com/yabatech/campusbot/internal/cli/formatter"
)

func newPlanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [topic]",
		Short: "Generate a guided-learning research plan for a topic",
		Example: `  campusbot plan "renewable energy in Nigeria"
  campusbot plan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			if strings.TrimSpace(topic) == "" && app.interactive() {
				var err error
				if topic, err = app.promptTopic(); err != nil {
					return err
				}
			}

			stop := func() {}
			if app.Styled {
				stop = formatter.StartSpinner(os.Stderr, "Drafting your research plan...")
			}
			reply, err := app.Assistant.GuidedLearning(cmd.Context(), topic)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReply("Research plan", reply, app.Styled))
			return nil
		},
	}
}

func (a *App) promptTopic() (string, error) {
	if a.PromptTopic != nil {
		return a.PromptTopic()
	}

	var topic string
	err := topicForm(&topic).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", fmt.Errorf("cancelled")
	}
	return topic, err
}

func topicForm(topic *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What would you like to learn about?").
				Placeholder("e.g. soil mechanics for civil engineering").
				Value(topic).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return assistant.ErrEmptyTopic
					}
					return nil
				}),
		),
	).WithTheme(campusHuhTheme()).WithShowHelp(false)
}

// campusHuhTheme matches huh forms to the formatter palette.
func campusHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
