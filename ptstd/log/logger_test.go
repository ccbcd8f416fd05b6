package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var levelAtImport zerolog.Level

func init() { levelAtImport = zerolog.GlobalLevel() }

func TestImportKeepsGlobalLevel(t *testing.T) {
	if levelAtImport != zerolog.DebugLevel {
		t.Fatalf("global level after import = %v, want zerolog's default debug", levelAtImport)
	}
}

func TestTraceSinkLowersGlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	s, buf := newTestSink(t, "info")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("an info sink must not touch the global level")
	}
	s.SetLevel(zerolog.TraceLevel)
	if zerolog.GlobalLevel() != zerolog.TraceLevel {
		t.Fatalf("global level = %v, want trace", zerolog.GlobalLevel())
	}
	{
		l := s.Logger()
		l.Trace().Msg("visible")
	}
	if !strings.Contains(buf.String(), "TRACE ptstd -- visible") {
		t.Fatalf("trace event missing: %q", buf.String())
	}

	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	s.SetLevel(zerolog.InfoLevel)
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("SetLevel must never raise or reset a caller's global level")
	}
}

func newTestSink(t *testing.T, level string) (*Sink, *bytes.Buffer) {
	t.Helper()
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	s, err := New(Config{Destination: Console, Output: &buf, Level: level})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("", 2*3600))
	s.w.now = func() time.Time { return fixed }
	return s, &buf
}

func TestLineLayout(t *testing.T) {
	s, buf := newTestSink(t, "trace")

	{
		l := s.Logger()
		l.Info().Msg("some info")
	}
	{
		l := s.WithTarget("my_target")
		l.Debug().Str("peer", "127.0.0.1:9").Int("n", 3).Msg("a log event")
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	want := "2024-05-01 10:00:00.000000000 +02:00  INFO ptstd -- some info"
	if lines[0] != want {
		t.Fatalf("line 0:\n got %q\nwant %q", lines[0], want)
	}
	want = "2024-05-01 10:00:00.000000000 +02:00 DEBUG my_target -- a log event n=3 peer=127.0.0.1:9"
	if lines[1] != want {
		t.Fatalf("line 1:\n got %q\nwant %q", lines[1], want)
	}
}

func TestLevelFilter(t *testing.T) {
	s, buf := newTestSink(t, "info")
	l := s.Logger()

	l.Trace().Msg("some trace")
	l.Debug().Msg("some debug")
	l.Info().Msg("some info")
	l.Warn().Msg("some warn")
	l.Error().Msg("some error")

	out := buf.String()
	for _, hidden := range []string{"some trace", "some debug"} {
		if strings.Contains(out, hidden) {
			t.Fatalf("%q should be filtered: %s", hidden, out)
		}
	}
	for _, shown := range []string{" INFO ", " WARN ", "ERROR "} {
		if !strings.Contains(out, shown) {
			t.Fatalf("missing %q in %s", shown, out)
		}
	}

	buf.Reset()
	s.SetLevel(zerolog.TraceLevel)
	if s.Level() != zerolog.TraceLevel {
		t.Fatalf("SetLevel not applied")
	}
	l.Trace().Msg("now visible")
	if !strings.Contains(buf.String(), "TRACE ptstd -- now visible") {
		t.Fatalf("trace should pass after SetLevel: %q", buf.String())
	}
}

func TestEnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	var buf bytes.Buffer
	s, err := New(Config{Destination: Console, Output: &buf, Level: "trace"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Level() != zerolog.ErrorLevel {
		t.Fatalf("expected env level error, got %v", s.Level())
	}
}

func TestFileDestination(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "test.log")

	for i := 0; i < 2; i++ {
		s, err := New(Config{Destination: File, Path: path, Level: "debug"})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		{
			l := s.Logger()
			l.Trace().Msg("some trace")
		}
		{
			l := s.WithTarget("my_target")
			l.Debug().Msgf("a %s event", "log")
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "DEBUG my_target -- a log event"); got != 2 {
		t.Fatalf("expected the file to be appended twice, got %d:\n%s", got, data)
	}
	if strings.Contains(string(data), "some trace") {
		t.Fatalf("trace should be filtered at debug level")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	if _, err := New(Config{Destination: Network}); err != ErrNetworkDestination {
		t.Fatalf("expected ErrNetworkDestination, got %v", err)
	}
	if _, err := New(Config{Destination: File}); err != ErrMissingPath {
		t.Fatalf("expected ErrMissingPath, got %v", err)
	}
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected unknown level error")
	}
}

func TestParseLevelAndDestination(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}

	if d, err := ParseDestination("file"); err != nil || d != File {
		t.Fatalf("ParseDestination(file) = %v, %v", d, err)
	}
	if _, err := ParseDestination("syslog"); err == nil {
		t.Fatalf("expected error for unknown destination")
	}
}

func TestInitOnce(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Cleanup(func() { _ = Shutdown() })

	path := filepath.Join(t.TempDir(), "global.log")
	if err := InitFile(path, zerolog.InfoLevel); err != nil {
		t.Fatalf("InitFile: %v", err)
	}
	if err := InitConsole(); err != ErrAlreadyInitialized {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	{
		l := WithTarget("global")
		l.Info().Msg("hello")
	}
	SetLevel(zerolog.WarnLevel)
	{
		l := L()
		l.Info().Msg("suppressed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "INFO global -- hello") {
		t.Fatalf("missing global line: %q", data)
	}
	if strings.Contains(string(data), "suppressed") {
		t.Fatalf("SetLevel did not apply to the global sink")
	}
}
