package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/yabatech/campusbot/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	w := newWiring(os.Stderr, isTerminal(os.Stderr))
	defer w.close()

	app := &cli.App{
		Bootstrap: w.bootstrap,
		Styled:    isTerminal(os.Stdout),
	}
	app.IsInteractive = func() bool { return isTerminal(os.Stdin) }

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
