package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/liftdispatch/core/logger"
)

// Alias the core interface for convenience.
// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// Output formats accepted by Setup.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	mu     sync.RWMutex
	format = ""
)

// Setup applies the global log level and the output format of loggers
// created afterwards. An empty format keeps the APP_ENV detection.
func Setup(level, fmtName string) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("logging: %w", err)
		}
		lvl = l
	}
	switch fmtName {
	case "", FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("logging: unknown format %q", fmtName)
	}
	zerolog.SetGlobalLevel(lvl)
	mu.Lock()
	format = fmtName
	mu.Unlock()
	return nil
}

func currentFormat() string {
	mu.RLock()
	defer mu.RUnlock()
	return format
}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
