// Package config loads ptstd CLI configuration from defaults, ptstd.yaml,
// PTSTD_ environment variables and command-line flags.
package config

import "time"

// Config is the complete CLI configuration.
type Config struct {
	Log      LogConfig  `koanf:"log"`
	Net      NetConfig  `koanf:"net"`
	Pool     PoolConfig `koanf:"pool"`
	Features []string   `koanf:"features"`
}

// LogConfig selects where log lines go and at which level.
type LogConfig struct {
	Level       string `koanf:"level"`
	Destination string `koanf:"destination"`
	Path        string `koanf:"path"`
}

// NetConfig holds message protocol and transport settings.
type NetConfig struct {
	Transport      string        `koanf:"transport"`
	Addr           string        `koanf:"addr"`
	SliceSize      int           `koanf:"slice_size"`
	MaxRetries     int           `koanf:"max_retries"`
	MaxMessageSize int           `koanf:"max_message_size"`
	Compression    string        `koanf:"compression"`
	Secure         bool          `koanf:"secure"`
	Timeout        time.Duration `koanf:"timeout"`
}

// PoolConfig sizes the worker pool.
type PoolConfig struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

const (
	DefaultConfigFile     = "ptstd.yaml"
	DefaultAddr           = "127.0.0.1:7878"
	DefaultTransport      = "tcp"
	DefaultLogLevel       = "info"
	DefaultLogDestination = "console"
	DefaultTimeout        = 30 * time.Second
)
