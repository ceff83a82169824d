package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yabatech/campusbot/internal/cli/formatter"
	"github.com/yabatech/campusbot/internal/conversation"
)

func newChatCmd(app *App) *cobra.Command {
	var sessionKey string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation with the assistant",
		Long: `Start an interactive conversation. Earlier questions and answers in
the session are sent along with each new question.

Use /reset to clear the conversation and /quit (or esc) to leave. Pass
--session with a key printed by an earlier chat to continue it when the
sqlite store is configured with a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("chat needs an interactive terminal; use \"campusbot ask\" instead")
			}

			ctx := cmd.Context()
			var prior conversation.History
			if sessionKey == "" {
				sessionKey = conversation.NewSessionKey()
			} else {
				if !conversation.ValidSessionKey(sessionKey) {
					return fmt.Errorf("invalid session key %q", sessionKey)
				}
				var err error
				if prior, err = app.Assistant.History(ctx, sessionKey); err != nil {
					return err
				}
			}

			view := newChatView(ctx, app.Assistant, sessionKey, prior)
			if _, err := tea.NewProgram(view).Run(); err != nil {
				return fmt.Errorf("running chat: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("session: "+sessionKey))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionKey, "session", "", "resume an earlier session by key")
	return cmd
}
