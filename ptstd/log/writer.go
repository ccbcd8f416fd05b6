package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// TimeLayout is the timestamp layout of every line (local time).
const TimeLayout = "2006-01-02 15:04:05.000000000 -07:00"

// lineWriter turns zerolog's JSON events into fixed-layout text lines and
// applies the runtime max level.
type lineWriter struct {
	mu    sync.Mutex
	out   io.Writer
	level atomic.Int32
	now   func() time.Time
}

func newLineWriter(out io.Writer, level zerolog.Level) *lineWriter {
	w := &lineWriter{out: out, now: time.Now}
	w.level.Store(int32(level))
	return w
}

func (w *lineWriter) setLevel(l zerolog.Level) { w.level.Store(int32(l)) }

func (w *lineWriter) getLevel() zerolog.Level { return zerolog.Level(w.level.Load()) }

func (w *lineWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (w *lineWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < w.getLevel() {
		return len(p), nil
	}
	line, err := w.format(p)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.out, line); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *lineWriter) format(p []byte) (string, error) {
	evt := map[string]interface{}{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	if err := d.Decode(&evt); err != nil {
		return "", fmt.Errorf("log: cannot decode event: %w", err)
	}

	level := strings.ToUpper(stringField(evt, zerolog.LevelFieldName))
	target := stringField(evt, FieldTarget)
	if target == "" {
		target = DefaultTarget
	}
	msg := stringField(evt, zerolog.MessageFieldName)

	var b strings.Builder
	fmt.Fprintf(&b, "%-36s %5s %s -- %s", w.now().Format(TimeLayout), level, target, msg)

	keys := make([]string, 0, len(evt))
	for k := range evt {
		switch k {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName, FieldTarget:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(evt[k]))
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func stringField(evt map[string]interface{}, key string) string {
	if v, ok := evt[key].(string); ok {
		return v
	}
	return ""
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		if x == "" || strings.ContainsAny(x, " \t\n\"=") {
			return strconv.Quote(x)
		}
		return x
	case json.Number:
		return x.String()
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}
