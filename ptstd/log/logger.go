package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Destination selects where lines are written.
type Destination int

const (
	Console Destination = iota
	File
	// Network is reserved; New rejects it.
	Network
)

func (d Destination) String() string {
	switch d {
	case Console:
		return "console"
	case File:
		return "file"
	case Network:
		return "network"
	default:
		return "unknown"
	}
}

// ParseDestination accepts console, stdout, file and network.
func ParseDestination(s string) (Destination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "console", "stdout":
		return Console, nil
	case "file":
		return File, nil
	case "network":
		return Network, nil
	default:
		return Console, fmt.Errorf("log: unknown destination %q", s)
	}
}

const (
	// FieldTarget names the component that emitted an event.
	FieldTarget   = "target"
	DefaultTarget = "ptstd"
	// EnvLogLevel overrides Config.Level when set.
	EnvLogLevel = "PTSTD_LOG_LEVEL"
)

var (
	ErrNetworkDestination = errors.New("log: network destination is not supported")
	ErrMissingPath        = errors.New("log: file destination requires a path")
	ErrAlreadyInitialized = errors.New("log: logger already initialized")
)

// Config describes a Sink.
type Config struct {
	Destination Destination
	// Path is the file to append to for the File destination.
	Path string
	// Output replaces stdout for the Console destination.
	Output io.Writer
	// Level is the max level name; empty means trace unless EnvLogLevel is set.
	Level string
}

// Sink owns a configured writer and the loggers derived from it.
type Sink struct {
	w      *lineWriter
	base   zerolog.Logger
	closer io.Closer
}

// New opens the destination and returns a Sink writing to it.
func New(cfg Config) (*Sink, error) {
	level := zerolog.TraceLevel
	raw := cfg.Level
	if env := os.Getenv(EnvLogLevel); env != "" {
		raw = env
	}
	if raw != "" {
		parsed, err := ParseLevel(raw)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var (
		out    io.Writer
		closer io.Closer
	)
	switch cfg.Destination {
	case Console:
		out = cfg.Output
		if out == nil {
			out = os.Stdout
		}
	case File:
		if cfg.Path == "" {
			return nil, ErrMissingPath
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("log: open %s: %w", cfg.Path, err)
		}
		out, closer = f, f
	case Network:
		return nil, ErrNetworkDestination
	default:
		return nil, fmt.Errorf("log: unknown destination %d", cfg.Destination)
	}

	allowTrace(level)
	w := newLineWriter(out, level)
	return &Sink{
		w:      w,
		base:   zerolog.New(w).Level(zerolog.TraceLevel),
		closer: closer,
	}, nil
}

// Logger returns the base logger of the sink.
func (s *Sink) Logger() zerolog.Logger { return s.base }

// WithTarget returns a child logger tagged with target.
func (s *Sink) WithTarget(target string) zerolog.Logger {
	return s.base.With().Str(FieldTarget, target).Logger()
}

// SetLevel changes the max level for every logger of this sink.
func (s *Sink) SetLevel(l zerolog.Level) {
	allowTrace(l)
	s.w.setLevel(l)
}

// Level returns the current max level.
func (s *Sink) Level() zerolog.Level { return s.w.getLevel() }

// Close releases the file handle of a File sink.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ParseLevel maps level names to zerolog levels.
func ParseLevel(raw string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "off", "disabled", "none":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("log: unknown level %q", raw)
	}
}

var (
	mu          sync.RWMutex
	global      *Sink
	initialized bool
)

func init() {
	global = defaultSink()
}

// allowTrace lowers zerolog's global gate, which defaults to debug, when a
// sink is asked for trace events. It never raises the global level.
func allowTrace(l zerolog.Level) {
	if l == zerolog.TraceLevel && zerolog.GlobalLevel() > zerolog.TraceLevel {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}
}

// defaultSink writes info and above to stdout until Init is called.
func defaultSink() *Sink {
	w := newLineWriter(os.Stdout, zerolog.InfoLevel)
	return &Sink{w: w, base: zerolog.New(w).Level(zerolog.TraceLevel)}
}

// Init installs the process-wide sink. Only the first call succeeds.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return ErrAlreadyInitialized
	}
	s, err := New(cfg)
	if err != nil {
		return err
	}
	global = s
	initialized = true
	return nil
}

// InitConsole logs everything to stdout.
func InitConsole() error {
	return Init(Config{Destination: Console, Level: "trace"})
}

// InitFile appends to path at the given max level.
func InitFile(path string, level zerolog.Level) error {
	return Init(Config{Destination: File, Path: path, Level: level.String()})
}

// SetLevel changes the max level of the process-wide sink.
func SetLevel(l zerolog.Level) {
	mu.RLock()
	defer mu.RUnlock()
	global.SetLevel(l)
}

// L returns the process-wide logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global.Logger()
}

// WithTarget returns a process-wide child logger tagged with target.
func WithTarget(target string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global.WithTarget(target)
}

// Shutdown closes the process-wide sink and reverts to the stdout default.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	err := global.Close()
	global = defaultSink()
	initialized = false
	return err
}
