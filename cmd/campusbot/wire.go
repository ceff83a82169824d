package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/yabatech/campusbot/internal/assistant"
	"github.com/yabatech/campusbot/internal/cli"
	"github.com/yabatech/campusbot/internal/config"
	"github.com/yabatech/campusbot/internal/conversation"
	"github.com/yabatech/campusbot/internal/db"
	"github.com/yabatech/campusbot/internal/knowledge"
	"github.com/yabatech/campusbot/internal/llm"
	"github.com/yabatech/campusbot/internal/server"
)

// wiring is the composition root. It owns every resource it opens and
// releases them in close.
type wiring struct {
	logOut  io.Writer
	console bool
	closers []func() error
}

func newWiring(logOut io.Writer, console bool) *wiring {
	return &wiring{logOut: logOut, console: console}
}

func (w *wiring) bootstrap(app *cli.App, opts cli.BootstrapOptions) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.ConfigFile})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.LogLevel()
	// Terminal commands share the screen with the logger.
	if opts.Command != "serve" && level < zerolog.ErrorLevel {
		level = zerolog.ErrorLevel
	}
	logger := w.logger(level)

	kb, err := knowledge.Load(cfg.KnowledgeSources())
	if err != nil {
		return err
	}

	store, err := w.openStore(cfg.Store)
	if err != nil {
		return err
	}

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	client, err := llm.NewClient(context.Background(), cfg.LLMClientConfig(), observer)
	if err != nil {
		return fmt.Errorf("building model client: %w", err)
	}
	w.closers = append(w.closers, client.Close)

	svc := assistant.NewService(kb, store, client,
		assistant.Options{MaxTurns: cfg.Conversation.MaxTurns},
		assistant.NewLogUseCaseObserver(logger),
	)

	app.Assistant = svc
	app.NewServer = func(addr string) cli.Runner {
		return server.New(svc, serverOptions(cfg.Server, addr), logger)
	}

	logger.Debug().
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Str("store", cfg.Store.Driver).
		Msg("bootstrap_complete")
	return nil
}

// serverOptions maps the server config section onto server.Options. A
// non-empty addr from the command line wins over the configured one.
func serverOptions(cfg config.ServerConfig, addr string) server.Options {
	opts := server.Options{
		Addr:           cfg.Addr,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		StrictStatus:   cfg.StrictStatus,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookie:   cfg.SecureCookie,
	}
	if addr != "" {
		opts.Addr = addr
	}
	return opts
}

func (w *wiring) logger(level zerolog.Level) zerolog.Logger {
	out := w.logOut
	if w.console {
		out = zerolog.ConsoleWriter{Out: w.logOut, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func (w *wiring) openStore(cfg config.StoreConfig) (conversation.Store, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		database, err := db.OpenDB(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening conversation store: %w", err)
		}
		w.closers = append(w.closers, database.Close)
		return conversation.NewSQLiteStore(database), nil
	default:
		return conversation.NewMemoryStore(), nil
	}
}

// close releases resources in reverse order of acquisition.
func (w *wiring) close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		_ = w.closers[i]()
	}
	w.closers = nil
}
