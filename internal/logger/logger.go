package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/ConserveLee/questr/internal/constants"
)

// LogLevel defines the severity of the log
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps "debug", "info", "warn" or "error" to a level (default info).
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ANSI colours
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[91m"
	ColorYellow = "\033[33m"
	ColorGreen  = "\033[32m"
	ColorBlue   = "\033[34m"
	ColorGray   = "\033[90m"
)

var levelColors = map[LogLevel]string{
	LevelDebug: ColorGray,
	LevelInfo:  ColorGreen,
	LevelWarn:  ColorYellow,
	LevelError: ColorRed,
}

// AppLogger handles application logging to a sink and an in-memory history
type AppLogger struct {
	mu      sync.Mutex
	out     io.Writer
	level   LogLevel
	color   bool
	history []string
	now     func() time.Time
}

// NewAppLogger creates a new logger instance writing to out.
// Colour is enabled when out is a terminal.
func NewAppLogger(out io.Writer, level LogLevel) *AppLogger {
	return &AppLogger{
		out:   out,
		level: level,
		color: IsTerminal(out),
		now:   time.Now,
	}
}

// IsTerminal reports whether w is a terminal (or a cygwin/msys pty).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Colorize wraps s in the given colour when enabled.
func Colorize(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + ColorReset
}

// Color reports whether output is coloured.
func (l *AppLogger) Color() bool {
	return l.color
}

// Debug logs a debug message
func (l *AppLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an informational message
func (l *AppLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *AppLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *AppLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// History returns a copy of the most recent log lines, oldest first.
func (l *AppLogger) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.history))
	copy(out, l.history)
	return out
}

// log handles the formatting and appending
func (l *AppLogger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := l.now().Format("15:04:05")
	formattedMsg := fmt.Sprintf("[%s] %s: %s", timestamp, level, msg)

	l.history = append(l.history, formattedMsg)
	if len(l.history) > constants.LogHistorySize {
		l.history = l.history[1:]
	}

	if l.out == nil {
		return
	}
	if l.color {
		fmt.Fprintf(l.out, "[%s] %s: %s\n", timestamp, Colorize(true, levelColors[level], level.String()), msg)
		return
	}
	fmt.Fprintln(l.out, formattedMsg)
}

// Nop returns a logger that only keeps history.
func Nop() *AppLogger {
	return NewAppLogger(nil, LevelDebug)
}
