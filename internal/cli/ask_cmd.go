package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yabatech/campusbot/internal/cli/formatter"
	"github.com/yabatech/campusbot/internal/conversation"
)

func newAskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question about the college",
		Example: `  campusbot ask "What are the admission requirements for Computer Science?"
  campusbot ask how much is the HND acceptance fee`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			// One-shot questions start a fresh session every time.
			sessionKey := conversation.NewSessionKey()

			stop := func() {}
			if app.Styled {
				stop = formatter.StartSpinner(os.Stderr, "Thinking...")
			}
			reply, err := app.Assistant.Ask(cmd.Context(), sessionKey, question)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReply("Answer", reply, app.Styled))
			return nil
		},
	}
}
