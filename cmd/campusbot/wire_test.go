package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yabatech/campusbot/internal/cli"
	"github.com/yabatech/campusbot/internal/config"
	"github.com/yabatech/campusbot/internal/knowledge"
	"github.com/yabatech/campusbot/internal/llm"
	"github.com/yabatech/campusbot/internal/server"
	"github.com/yabatech/campusbot/internal/testutil"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "CAMPUSBOT_LLM_API_KEY", "CAMPUSBOT_LLM_PROVIDER", "CAMPUSBOT_STORE_DRIVER", "CAMPUSBOT_SERVER_SECURE_COOKIE"} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campusbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func ollamaConfig(src knowledge.Sources, extra string) string {
	return fmt.Sprintf(`knowledge:
  text_path: %q
  data_path: %q
llm:
  provider: ollama
  model: llama3.2
  endpoint: "http://127.0.0.1:1"
%s`, src.TextPath, src.DataPath, extra)
}

func TestBootstrap_MemoryStore(t *testing.T) {
	clearEnv(t)
	cfgPath := writeConfig(t, ollamaConfig(testutil.WriteKnowledge(t), ""))

	var logs bytes.Buffer
	w := newWiring(&logs, false)
	defer w.close()

	app := &cli.App{}
	require.NoError(t, w.bootstrap(app, cli.BootstrapOptions{ConfigFile: cfgPath, Command: "ask"}))

	assert.NotNil(t, app.Assistant)
	require.NotNil(t, app.NewServer)
	assert.IsType(t, &server.Server{}, app.NewServer(""))
	assert.Len(t, w.closers, 1, "model client only")
}

func TestBootstrap_SQLiteStore(t *testing.T) {
	clearEnv(t)
	dsn := filepath.Join(t.TempDir(), "data", "campusbot.db")
	cfgPath := writeConfig(t, ollamaConfig(testutil.WriteKnowledge(t), fmt.Sprintf("store:\n  driver: sqlite\n  dsn: %q\n", dsn)))

	w := newWiring(&bytes.Buffer{}, false)
	app := &cli.App{}
	require.NoError(t, w.bootstrap(app, cli.BootstrapOptions{ConfigFile: cfgPath, Command: "serve"}))

	assert.Len(t, w.closers, 2)
	assert.FileExists(t, dsn)

	w.close()
	assert.Empty(t, w.closers)
}

func TestBootstrap_MissingKnowledge(t *testing.T) {
	clearEnv(t)
	src := knowledge.Sources{
		TextPath: filepath.Join(t.TempDir(), "missing.txt"),
		DataPath: filepath.Join(t.TempDir(), "missing.json"),
	}
	cfgPath := writeConfig(t, ollamaConfig(src, ""))

	w := newWiring(&bytes.Buffer{}, false)
	defer w.close()

	err := w.bootstrap(&cli.App{}, cli.BootstrapOptions{ConfigFile: cfgPath})
	assert.ErrorIs(t, err, knowledge.ErrResourceLoad)
}

func TestBootstrap_GeminiWithoutKey(t *testing.T) {
	clearEnv(t)
	src := testutil.WriteKnowledge(t)
	cfgPath := writeConfig(t, fmt.Sprintf("knowledge:\n  text_path: %q\n  data_path: %q\n", src.TextPath, src.DataPath))

	w := newWiring(&bytes.Buffer{}, false)
	defer w.close()

	err := w.bootstrap(&cli.App{}, cli.BootstrapOptions{ConfigFile: cfgPath})
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	clearEnv(t)
	cfgPath := writeConfig(t, ollamaConfig(testutil.WriteKnowledge(t), "store:\n  driver: redis\n"))

	w := newWiring(&bytes.Buffer{}, false)
	defer w.close()

	err := w.bootstrap(&cli.App{}, cli.BootstrapOptions{ConfigFile: cfgPath})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestServerOptions(t *testing.T) {
	cfg := config.ServerConfig{
		Addr:           ":4000",
		StrictStatus:   true,
		AllowedOrigins: []string{"https://portal.yabatech.edu.ng"},
		SecureCookie:   true,
	}

	opts := serverOptions(cfg, "")
	assert.Equal(t, ":4000", opts.Addr)
	assert.True(t, opts.StrictStatus)
	assert.True(t, opts.SecureCookie)
	assert.Equal(t, cfg.AllowedOrigins, opts.AllowedOrigins)

	assert.Equal(t, ":8080", serverOptions(cfg, ":8080").Addr)
}

func TestServerOptions_SecureCookieFromConfigFile(t *testing.T) {
	clearEnv(t)
	cfgPath := writeConfig(t, ollamaConfig(testutil.WriteKnowledge(t), "server:\n  secure_cookie: true\n"))

	cfg, err := config.Load(config.LoadOptions{ConfigFile: cfgPath})
	require.NoError(t, err)
	assert.True(t, serverOptions(cfg.Server, "").SecureCookie)
}

func TestLogger_JSONWhenNotConsole(t *testing.T) {
	var out bytes.Buffer
	w := newWiring(&out, false)

	logger := w.logger(zerolog.DebugLevel)
	logger.Info().Msg("hello")

	assert.Contains(t, out.String(), `"message":"hello"`)
	assert.Contains(t, out.String(), `"level":"info"`)
}
