package config

import (
	"errors"
	"fmt"
	"strings"

	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "OHMSLAB"

// defaults lists every key so AutomaticEnv overrides reach Unmarshal even
// when no config file mentions them.
var defaults = map[string]any{
	"server.port":                "8080",
	"server.shutdown_timeout":    "10s",
	"log.level":                  logger.InfoLevel,
	"auth.token_secret":          "",
	"auth.token_ttl":             "2h",
	"sessions.idle_ttl":          "30m",
	"sessions.janitor_tick":      "1m",
	"db.path":                    ":memory:",
	"narration.gemini_api_key":   "",
	"narration.model":            narration.DefaultGeminiModel,
	"narration.voice":            narration.DefaultGeminiVoice,
	"narration.words_per_minute": narration.DefaultWordsPerMinute,
	"tracing.enabled":            false,
	"tracing.service_name":       "ohms-lab",
	"tracing.exporter":           "stdout",
	"tracing.endpoint":           "",
	"tracing.sample_ratio":       1.0,
}

// Loader reads configuration with one viper instance so the same source can be
// watched after the first load.
type Loader struct {
	v *viper.Viper
}

// NewLoader looks for config.yml in each of paths.
func NewLoader(paths ...string) *Loader {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load reads the config file when present and returns the validated result.
// Environment variables override the file.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return l.decode()
}

// Watch calls onChange with the reloaded config whenever the file changes.
// Invalid edits are reported through onError and otherwise ignored.
func (l *Loader) Watch(onChange func(*Config), onError func(error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// File returns the config file in use, or "" when running on defaults and env.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Load is NewLoader("configs", ".").Load().
func Load() (*Config, error) {
	return NewLoader("configs", ".").Load()
}
