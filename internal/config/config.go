// Package config loads runtime settings from configs/config.yml, OHMSLAB_*
// environment variables and built-in defaults.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Sessions  SessionConfig   `mapstructure:"sessions"`
	DB        DBConfig        `mapstructure:"db"`
	Narration NarrationConfig `mapstructure:"narration"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// AuthConfig signs session tokens.
type AuthConfig struct {
	TokenSecret string        `mapstructure:"token_secret" validate:"required,min=16"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

// SessionConfig controls idle session eviction.
type SessionConfig struct {
	IdleTTL     time.Duration `mapstructure:"idle_ttl" validate:"gt=0"`
	JanitorTick time.Duration `mapstructure:"janitor_tick" validate:"gt=0"`
}

// DBConfig locates the activity log database; ":memory:" keeps it in-process.
type DBConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// NarrationConfig selects the narrator. Without an API key the silent narrator is used.
type NarrationConfig struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	Model          string `mapstructure:"model" validate:"required"`
	Voice          string `mapstructure:"voice" validate:"required"`
	WordsPerMinute int    `mapstructure:"words_per_minute" validate:"gt=0"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name" validate:"required"`
	Exporter    string  `mapstructure:"exporter" validate:"oneof=stdout otlp otlpgrpc"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}
