// Package config loads tasktrack settings from defaults, an optional config
// file, TASKTRACK_* environment variables and command-line flags.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" validate:"required"`
	Journal   JournalConfig   `mapstructure:"journal" validate:"required"`
	Transport TransportConfig `mapstructure:"transport"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Shell     ShellConfig     `mapstructure:"shell"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// JournalConfig selects where task events are written. Path is required for
// the file-backed backends.
type JournalConfig struct {
	Backend string      `mapstructure:"backend" validate:"required,oneof=none memory bolt sqlite redis"`
	Path    string      `mapstructure:"path" validate:"required_if=Backend bolt,required_if=Backend sqlite"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type TransportConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" validate:"required,hostname_port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// RetryConfig shapes the policy used for journal and transport writes.
// Strategy is one of exponential, fixed or composite.
type RetryConfig struct {
	Strategy     string        `mapstructure:"strategy" validate:"required,oneof=exponential fixed composite"`
	InitialDelay time.Duration `mapstructure:"initial_delay" validate:"gte=0"`
	MaxDelay     time.Duration `mapstructure:"max_delay" validate:"gte=0"`
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"gte=0"`
}

type ShellConfig struct {
	// ActionTimeout bounds each menu action, sink writes included and
	// prompt input excluded. Zero disables it.
	ActionTimeout time.Duration `mapstructure:"action_timeout" validate:"gte=0"`
	Color         bool          `mapstructure:"color"`
}
