package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	base   zerolog.Logger
	inited bool
)

// Options configures the global logger.
type Options struct {
	Level  string    // debug|info|warn|error (default: info)
	Pretty bool      // human readable console output instead of JSON
	Out    io.Writer // defaults to os.Stderr
}

// Init configures the global JSON logger from the environment.
//
// Environment variables (optional):
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false)
func Init() {
	Configure(Options{
		Level:  getenv("LOG_LEVEL", "info"),
		Pretty: strings.EqualFold(getenv("LOG_PRETTY", "false"), "true"),
	})
}

// Configure replaces the global logger. Logs go to stderr so that commands
// writing reports to stdout stay pipeable.
func Configure(o Options) {
	var w io.Writer = os.Stderr
	if o.Out != nil {
		w = o.Out
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if o.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(o.Level))

	mu.Lock()
	base = l
	inited = true
	mu.Unlock()
}

// L returns the global logger. Call Init() or Configure() once on startup.
func L() *zerolog.Logger {
	mu.RLock()
	ready := inited
	mu.RUnlock()
	if !ready {
		Init()
	}
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// With returns a child logger tagged with a component name.
func With(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
