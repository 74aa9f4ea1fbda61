package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the log level
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Format selects the encoding of log lines.
type Format string

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
	// FormatText writes human-readable console lines.
	FormatText Format = "text"
)

// Config represents logger configuration
type Config struct {
	Level  LogLevel
	Format Format
	// Output defaults to the writer set by SetOutput, or os.Stdout.
	Output io.Writer
}

var (
	mu            sync.RWMutex
	defaultLogger zerolog.Logger
	current       = Config{Level: InfoLevel, Format: FormatText, Output: os.Stdout}
)

// ParseLevel maps a configured level name onto a LogLevel. Unknown names
// fall back to info.
func ParseLevel(s string) LogLevel {
	switch l := LogLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return l
	case "warning":
		return WarnLevel
	}
	return InfoLevel
}

// ParseFormat maps a configured format name onto a Format. Anything other
// than "text" is JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// Configure configures the logger with the provided config
func Configure(config Config) {
	mu.Lock()
	defer mu.Unlock()

	if config.Output == nil {
		config.Output = current.Output
	}
	current = config

	zerolog.TimeFieldFormat = time.RFC3339
	switch config.Level {
	case DebugLevel:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case WarnLevel:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case ErrorLevel:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	writer := config.Output
	if config.Format == FormatText {
		writer = zerolog.ConsoleWriter{Out: config.Output, TimeFormat: time.RFC3339}
	}
	defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = defaultLogger
}

// SetOutput redirects the default logger, keeping level and format. Later
// Configure calls without an Output keep writing to w.
func SetOutput(w io.Writer) {
	mu.RLock()
	cfg := current
	mu.RUnlock()
	cfg.Output = w
	Configure(cfg)
}

// Get returns the default logger.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Component returns the default logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// WithFields returns the default logger carrying the given fields.
func WithFields(fields map[string]interface{}) zerolog.Logger {
	return Get().With().Fields(fields).Logger()
}

func Debug() *zerolog.Event {
	l := Get()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Get()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Get()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Get()
	return l.Error()
}

func init() {
	Configure(current)
}
