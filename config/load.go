package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is prepended to every environment variable, e.g.
// TASKTRACK_JOURNAL_BACKEND.
const EnvPrefix = "TASKTRACK"

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"journal":      "journal.backend",
	"journal-path": "journal.path",
	"retry":        "retry.strategy",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("journal.backend", "none")
	v.SetDefault("journal.path", "")
	v.SetDefault("journal.redis.addr", "localhost:6379")
	v.SetDefault("journal.redis.password", "")
	v.SetDefault("journal.redis.db", 0)
	v.SetDefault("journal.redis.prefix", "tasktrack:")
	v.SetDefault("journal.redis.ttl", "24h")

	v.SetDefault("transport.enabled", false)
	v.SetDefault("transport.redis.addr", "localhost:6379")
	v.SetDefault("transport.redis.password", "")
	v.SetDefault("transport.redis.db", 0)
	v.SetDefault("transport.redis.prefix", "tasktrack:")
	v.SetDefault("transport.redis.ttl", "0s")

	v.SetDefault("retry.strategy", "exponential")
	v.SetDefault("retry.initial_delay", "100ms")
	v.SetDefault("retry.max_delay", "2s")
	v.SetDefault("retry.max_attempts", 3)

	v.SetDefault("shell.action_timeout", "5s")
	v.SetDefault("shell.color", true)
}

// Load builds the configuration. path may be empty; flags may be nil.
// Precedence: flags, environment, file, defaults.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: validation failed: %w", ErrInvalidConfig, err)
	}
	if c.Retry.MaxDelay > 0 && c.Retry.InitialDelay > c.Retry.MaxDelay {
		return fmt.Errorf("%w: retry.initial_delay %s exceeds retry.max_delay %s",
			ErrInvalidConfig, c.Retry.InitialDelay, c.Retry.MaxDelay)
	}
	return nil
}
