// Package config loads service configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/winlab-analyzer/internal/llm"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WINLAB_SERVER_PORT.
const EnvPrefix = "WINLAB"

// Archive backends.
const (
	ArchiveNone = "none"
	ArchiveFile = "file"
	ArchiveS3   = "s3"
)

// Config is the full service configuration. Every field has a default, so an
// empty environment yields a usable offline configuration.
type Config struct {
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	DatabaseURL  string        `mapstructure:"database_url"`
	LogLevel     string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	PersonaFile  string        `mapstructure:"persona_file"`
	Server       ServerConfig  `mapstructure:"server"`
	LLM          LLMConfig     `mapstructure:"llm"`
	Archive      ArchiveConfig `mapstructure:"archive"`
	Share        ShareConfig   `mapstructure:"share"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LLMConfig selects and tunes the completion service.
type LLMConfig struct {
	Transport string        `mapstructure:"transport" validate:"oneof=rest sdk"`
	Endpoint  string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Model     string        `mapstructure:"model" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ArchiveConfig controls where raw completions are kept.
type ArchiveConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=none file s3"`
	Dir     string `mapstructure:"dir" validate:"required_if=Backend file"`
	Bucket  string `mapstructure:"bucket" validate:"required_if=Backend s3"`
	Prefix  string `mapstructure:"prefix"`
	Region  string `mapstructure:"region"`
}

// Completion converts the settings into a completion client config.
func (c LLMConfig) Completion() *llm.Config {
	return &llm.Config{
		Transport: llm.Transport(c.Transport),
		Endpoint:  c.Endpoint,
		Model:     c.Model,
		Timeout:   c.Timeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("persona_file", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("llm.transport", string(llm.TransportREST))
	v.SetDefault("llm.endpoint", llm.DefaultEndpoint)
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.timeout", llm.DefaultTimeout)

	v.SetDefault("archive.backend", ArchiveNone)
	v.SetDefault("archive.dir", "debug")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "raw-completions")
	v.SetDefault("archive.region", "")

	v.SetDefault("share.secret", "")
	v.SetDefault("share.ttl", DefaultShareTTL)
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment are used. GEMINI_API_KEY and DATABASE_URL are honored
// without the prefix.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini_api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and cross-field requirements. It does not
// require the API key or database URL; commands that need them check.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("mapstructure")
	})

	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' failed %q check", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("config error: 'llm.timeout' must be positive")
	}
	return c.Share.normalize()
}

// RequireAPIKey returns an error when no completion API key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY is required but not set")
	}
	return nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	return nil
}
