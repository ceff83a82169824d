package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yabatech/campusbot/internal/db"
	"github.com/yabatech/campusbot/internal/knowledge"
	"github.com/yabatech/campusbot/internal/llm"
)

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// EnvPrefix is prepended to every environment override, e.g.
	// CAMPUSBOT_SERVER_ADDR for server.addr.
	EnvPrefix = "CAMPUSBOT"

	// DefaultConfigName is the config file looked up when none is given.
	DefaultConfigName = "campusbot"

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Knowledge    KnowledgeConfig    `mapstructure:"knowledge"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Store        StoreConfig        `mapstructure:"store"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	StrictStatus   bool          `mapstructure:"strict_status"`   // 503 instead of 200 on model failure
	AllowedOrigins []string      `mapstructure:"allowed_origins"` // CORS; "*" allows any
	SecureCookie   bool          `mapstructure:"secure_cookie"`   // set when served over HTTPS
}

type KnowledgeConfig struct {
	TextPath   string `mapstructure:"text_path"`
	DataPath   string `mapstructure:"data_path"`
	SchemaPath string `mapstructure:"schema_path"`
}

type ConversationConfig struct {
	MaxTurns int `mapstructure:"max_turns"` // 0 replays every turn
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

type LLMConfig struct {
	Provider              string        `mapstructure:"provider"`
	Model                 string        `mapstructure:"model"`
	APIKey                string        `mapstructure:"api_key"`
	Endpoint              string        `mapstructure:"endpoint"`
	MaxOutputTokens       int           `mapstructure:"max_output_tokens"`
	Temperature           float64       `mapstructure:"temperature"`
	Timeout               time.Duration `mapstructure:"timeout"`
	AskTimeout            time.Duration `mapstructure:"ask_timeout"`
	GuidedLearningTimeout time.Duration `mapstructure:"guided_learning_timeout"`
	MaxRetries            int           `mapstructure:"max_retries"`
	RetryBackoff          time.Duration `mapstructure:"retry_backoff"`
	LogCalls              bool          `mapstructure:"log_calls"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadOptions points Load at explicit files. Empty fields use the defaults:
// campusbot.yaml in . or $HOME/.campusbot, and .env in the working directory.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// Load resolves configuration from defaults, an optional config file, an
// optional .env file and the environment, in increasing precedence.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".campusbot"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The hosted-model key is commonly exported under its vendor name.
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	// Existing environment variables win over the file.
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	def := llm.DefaultConfig()
	ask := def.TaskSettings(llm.TaskAsk)

	v.SetDefault("server.addr", ":4000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.strict_status", false)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.secure_cookie", false)

	v.SetDefault("knowledge.text_path", "knowledge.txt")
	v.SetDefault("knowledge.data_path", "data.json")
	v.SetDefault("knowledge.schema_path", "")

	v.SetDefault("conversation.max_turns", 0)

	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.dsn", db.MemoryDSN)

	v.SetDefault("llm.provider", def.Provider)
	v.SetDefault("llm.model", def.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", def.Endpoint)
	v.SetDefault("llm.max_output_tokens", ask.MaxTokens)
	v.SetDefault("llm.temperature", ask.Temperature)
	v.SetDefault("llm.timeout", def.TaskTimeout(llm.TaskAsk))
	v.SetDefault("llm.ask_timeout", 0)
	v.SetDefault("llm.guided_learning_timeout", def.TaskTimeout(llm.TaskGuidedLearning))
	v.SetDefault("llm.max_retries", def.MaxRetries)
	v.SetDefault("llm.retry_backoff", def.RetryBackoff())
	v.SetDefault("llm.log_calls", def.LogCalls)

	v.SetDefault("log.level", "info")
}

// Validate reports every unusable setting at once, wrapped in
// ErrInvalidConfig. Credentials are checked later, when the model client
// is built.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, fmt.Errorf("server.addr is required"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("server timeouts must not be negative"))
	}
	if c.Knowledge.TextPath == "" {
		errs = append(errs, fmt.Errorf("knowledge.text_path is required"))
	}
	if c.Knowledge.DataPath == "" {
		errs = append(errs, fmt.Errorf("knowledge.data_path is required"))
	}
	if c.Conversation.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("conversation.max_turns must not be negative, got %d", c.Conversation.MaxTurns))
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store.Driver))
	}
	if c.LLM.MaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_output_tokens must be positive, got %d", c.LLM.MaxOutputTokens))
	}
	if err := c.LLMClientConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// LLMClientConfig converts the llm section into the model client config.
func (c *Config) LLMClientConfig() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Model = c.LLM.Model
	out.APIKey = c.LLM.APIKey
	out.Endpoint = c.LLM.Endpoint
	out.TimeoutMs = int(c.LLM.Timeout / time.Millisecond)
	out.MaxRetries = c.LLM.MaxRetries
	out.RetryBackoffMs = int(c.LLM.RetryBackoff / time.Millisecond)
	out.LogCalls = c.LLM.LogCalls
	out.SetSampling(c.LLM.Temperature, c.LLM.MaxOutputTokens)
	out.SetTaskTimeout(llm.TaskAsk, c.LLM.AskTimeout)
	out.SetTaskTimeout(llm.TaskGuidedLearning, c.LLM.GuidedLearningTimeout)
	return out
}

// KnowledgeSources returns the file locations of the knowledge base.
func (c *Config) KnowledgeSources() knowledge.Sources {
	return knowledge.Sources{
		TextPath:   c.Knowledge.TextPath,
		DataPath:   c.Knowledge.DataPath,
		SchemaPath: c.Knowledge.SchemaPath,
	}
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
