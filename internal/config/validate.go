package config

import (
	"errors"
	"fmt"

	"github.com/TheusHen/ptstd/ptstd/feature"
	plog "github.com/TheusHen/ptstd/ptstd/log"
	"github.com/TheusHen/ptstd/ptstd/net"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Validate checks every section and reports the first problem.
func (c *Config) Validate() error {
	if _, err := plog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	dst, err := plog.ParseDestination(c.Log.Destination)
	if err != nil {
		return fmt.Errorf("%w: log.destination: %w", ErrInvalid, err)
	}
	if dst == plog.Network {
		return fmt.Errorf("%w: log.destination: %w", ErrInvalid, plog.ErrNetworkDestination)
	}
	if dst == plog.File && c.Log.Path == "" {
		return fmt.Errorf("%w: log.path is required for the file destination", ErrInvalid)
	}

	switch c.Net.Transport {
	case "tcp", "quic":
	default:
		return fmt.Errorf("%w: net.transport must be tcp or quic, got %q", ErrInvalid, c.Net.Transport)
	}
	if c.Net.Addr == "" {
		return fmt.Errorf("%w: net.addr is required", ErrInvalid)
	}
	if c.Net.SliceSize <= 0 {
		return fmt.Errorf("%w: net.slice_size must be positive", ErrInvalid)
	}
	if c.Net.MaxRetries < 0 {
		return fmt.Errorf("%w: net.max_retries must not be negative", ErrInvalid)
	}
	if c.Net.MaxMessageSize <= 0 {
		return fmt.Errorf("%w: net.max_message_size must be positive", ErrInvalid)
	}
	if _, ok := net.ParseCompression(c.Net.Compression); !ok {
		return fmt.Errorf("%w: net.compression %q", ErrInvalid, c.Net.Compression)
	}
	if c.Net.Timeout <= 0 {
		return fmt.Errorf("%w: net.timeout must be positive", ErrInvalid)
	}

	if c.Pool.Workers <= 0 {
		return fmt.Errorf("%w: pool.workers must be positive", ErrInvalid)
	}
	if c.Pool.QueueSize < 0 {
		return fmt.Errorf("%w: pool.queue_size must not be negative", ErrInvalid)
	}

	if _, err := feature.Manifest().Parse(c.Features...); err != nil {
		return fmt.Errorf("%w: features: %w", ErrInvalid, err)
	}
	return nil
}

// NetOptions converts the net section into MessageCenter options.
func (c *Config) NetOptions() []net.Option {
	level, _ := net.ParseCompression(c.Net.Compression)
	return []net.Option{
		net.WithSliceSize(c.Net.SliceSize),
		net.WithMaxRetries(c.Net.MaxRetries),
		net.WithMaxMessageSize(c.Net.MaxMessageSize),
		net.WithCompression(level),
	}
}

// LogSinkConfig converts the log section for ptstd/log.
func (c *Config) LogSinkConfig() plog.Config {
	dst, _ := plog.ParseDestination(c.Log.Destination)
	return plog.Config{Destination: dst, Path: c.Log.Path, Level: c.Log.Level}
}
