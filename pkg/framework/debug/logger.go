// Package debug provides the logger and profiler used around the note
// sequencer. Nothing here is process-global: callers construct a Logger and
// pass it to whatever needs it.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int32

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	// LogLevelOff disables all logging.
	LogLevelOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "OFF"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel parses a level name such as "warn" (case-insensitive). An
// empty name is LogLevelInfo.
func ParseLevel(name string) (LogLevel, error) {
	switch s := strings.ToLower(strings.TrimSpace(name)); s {
	case "":
		return LogLevelInfo, nil
	case "warning":
		return LogLevelWarn, nil
	case "none":
		return LogLevelOff, nil
	default:
		for i, n := range levelNames {
			if strings.EqualFold(n, s) {
				return LogLevel(i), nil
			}
		}
		return LogLevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Flags for logger output formatting.
const (
	FlagTime   = 1 << iota // Include timestamp
	FlagLevel              // Include log level
	FlagPrefix             // Include prefix
)

// DefaultFlags are the default formatting flags.
const DefaultFlags = FlagTime | FlagLevel | FlagPrefix

// sink is the writer shared by a logger and its named children.
type sink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// Logger writes leveled log lines. It is safe for concurrent use, and
// Enabled never blocks, so the audio thread may check it before formatting.
type Logger struct {
	out    *sink
	level  *atomic.Int32
	prefix string
	flags  int
}

// New creates a logger at LogLevelInfo.
func New(output io.Writer, prefix string, flags int) *Logger {
	l := &Logger{
		out:    &sink{w: output, now: time.Now},
		level:  new(atomic.Int32),
		prefix: prefix,
		flags:  flags,
	}
	l.level.Store(int32(LogLevelInfo))
	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := New(io.Discard, "", 0)
	l.SetLevel(LogLevelOff)
	return l
}

// NewFileLogger creates a logger that appends to a file, creating its
// directory. The returned closer closes the file.
func NewFileLogger(filename, prefix string, flags int) (*Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(file, prefix, flags), file, nil
}

// Named returns a logger writing to the same output under "prefix/name".
// Parent and child share one level.
func (l *Logger) Named(name string) *Logger {
	child := *l
	if l.prefix != "" {
		child.prefix = l.prefix + "/" + name
	} else {
		child.prefix = name
	}
	return &child
}

// Prefix returns the logger's prefix.
func (l *Logger) Prefix() string {
	return l.prefix
}

// SetLevel sets the minimum level, for this logger and every logger
// sharing it.
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// Level returns the minimum log level.
func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

// SetClock replaces the timestamp source used with FlagTime.
func (l *Logger) SetClock(now func() time.Time) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.now = now
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.Level() && level < LogLevelOff
}

// Log writes one line at level. A trailing newline is added if missing.
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	var sb strings.Builder
	if l.flags&FlagTime != 0 {
		sb.WriteString(l.out.now().Format("2006-01-02 15:04:05.000 "))
	}
	if l.flags&FlagLevel != 0 {
		fmt.Fprintf(&sb, "[%s] ", level)
	}
	if l.flags&FlagPrefix != 0 && l.prefix != "" {
		fmt.Fprintf(&sb, "[%s] ", l.prefix)
	}
	sb.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		sb.WriteByte('\n')
	}
	io.WriteString(l.out.w, sb.String())
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LogLevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.Log(LogLevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}
