package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/TheusHen/ptstd/ptstd/net"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: PTSTD_NET__SLICE_SIZE sets net.slice_size.
const EnvPrefix = "PTSTD_"

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"log-destination":  "log.destination",
	"log-file":         "log.path",
	"transport":        "net.transport",
	"addr":             "net.addr",
	"slice-size":       "net.slice_size",
	"max-retries":      "net.max_retries",
	"max-message-size": "net.max_message_size",
	"compression":      "net.compression",
	"secure":           "net.secure",
	"timeout":          "net.timeout",
	"workers":          "pool.workers",
	"queue-size":       "pool.queue_size",
	"features":         "features",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.level":            DefaultLogLevel,
		"log.destination":      DefaultLogDestination,
		"log.path":             "",
		"net.transport":        DefaultTransport,
		"net.addr":             DefaultAddr,
		"net.slice_size":       net.DefaultSliceSize,
		"net.max_retries":      net.DefaultMaxRetries,
		"net.max_message_size": net.DefaultMaxMessageSize,
		"net.compression":      "none",
		"net.secure":           false,
		"net.timeout":          DefaultTimeout.String(),
		"pool.workers":         runtime.NumCPU(),
		"pool.queue_size":      0,
		"features":             []string{"default"},
	}
}

// findConfigFile returns the explicit path, or ptstd.yaml / ptstd.yml when present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{DefaultConfigFile, "ptstd.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// It returns the config file actually used, if any.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: PTSTD_POOL__WORKERS -> pool.workers
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}
