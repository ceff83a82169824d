package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yabatech/campusbot/internal/assistant"
	"github.com/yabatech/campusbot/internal/conversation"
)

// Assistant is the behaviour the terminal commands need from the service.
type Assistant interface {
	Ask(ctx context.Context, sessionKey, message string) (*assistant.Reply, error)
	GuidedLearning(ctx context.Context, topic string) (*assistant.Reply, error)
	History(ctx context.Context, sessionKey string) (conversation.History, error)
	Reset(ctx context.Context, sessionKey string) error
}

// Runner is a long-running surface such as the HTTP server.
type Runner interface {
	Run(ctx context.Context) error
}

// App holds the services CLI commands run against. Bootstrap, when set,
// fills the remaining fields from the --config flag before any subcommand
// runs; tests populate the fields directly instead.
type App struct {
	Assistant Assistant

	// NewServer builds the HTTP surface. An empty addr keeps the configured
	// listen address.
	NewServer func(addr string) Runner

	// Bootstrap wires the App for the command about to run.
	Bootstrap func(app *App, opts BootstrapOptions) error

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	// Styled enables lipgloss rendering; set when stdout is a terminal.
	Styled bool

	// PromptTopic asks for a guided-learning topic. Nil uses a huh form.
	PromptTopic func() (string, error)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// BootstrapOptions describes the invocation being wired.
type BootstrapOptions struct {
	ConfigFile string // empty for the default search path
	Command    string // name of the subcommand, e.g. "serve"
}

// NewRootCmd creates the top-level "campusbot" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "campusbot",
		Short:         "Yaba College of Technology FAQ and guided-learning assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Bootstrap == nil || app.Assistant != nil {
				return nil
			}
			if err := app.Bootstrap(app, BootstrapOptions{ConfigFile: configFile, Command: cmd.Name()}); err != nil {
				return err
			}
			if app.Assistant == nil {
				return fmt.Errorf("bootstrap did not provide an assistant")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default campusbot.yaml in . or $HOME/.campusbot)")

	root.AddCommand(
		newServeCmd(app),
		newAskCmd(app),
		newPlanCmd(app),
		newChatCmd(app),
	)

	return root
}
