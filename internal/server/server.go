package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/yabatech/campusbot/internal/assistant"
	"github.com/yabatech/campusbot/internal/conversation"
)

const shutdownTimeout = 10 * time.Second

// Assistant is the behaviour the HTTP layer needs from the service.
type Assistant interface {
	Ask(ctx context.Context, sessionKey, message string) (*assistant.Reply, error)
	GuidedLearning(ctx context.Context, topic string) (*assistant.Reply, error)
	History(ctx context.Context, sessionKey string) (conversation.History, error)
	Reset(ctx context.Context, sessionKey string) error
	ModelAvailable(ctx context.Context) bool
}

// Options configures the HTTP surface.
type Options struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	StrictStatus   bool
	AllowedOrigins []string
	SecureCookie   bool
}

// Server exposes an Assistant over HTTP.
type Server struct {
	svc    Assistant
	opts   Options
	logger zerolog.Logger
}

func New(svc Assistant, opts Options, logger zerolog.Logger) *Server {
	return &Server{
		svc:    svc,
		opts:   opts,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /ask", s.withSession(http.HandlerFunc(s.handleAsk)))
	mux.HandleFunc("POST /guided_learning", s.handleGuidedLearning)
	mux.Handle("GET /history", s.withSession(http.HandlerFunc(s.handleHistory)))
	mux.Handle("DELETE /history", s.withSession(http.HandlerFunc(s.handleReset)))
	mux.Handle("POST /chatbot/reset", s.withSession(http.HandlerFunc(s.handleReset)))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	var h http.Handler = mux
	h = cors(h, s.opts.AllowedOrigins)
	h = s.recoverer(h)
	h = s.accessLog(h)
	return h
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(context.Context) error {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http: %w", err)
		}
		s.logger.Info().Msg("server stopped")
		return nil
	})
	return p.Wait()
}
