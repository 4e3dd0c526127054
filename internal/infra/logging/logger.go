package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Constants for log levels that match slog.Level values.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// loggerKey is the attribute naming the component that wrote a record.
const loggerKey = "logger"

// Type aliases for commonly used slog types.
type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

//nolint:gochecknoglobals
var levelNames = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is the application identifier added to all log entries
	AppName string

	// Output specifies where logs are written ("stdout", "stderr", "discard" or a file path)
	Output string `env:"OUTPUT" default:"stderr"`

	// Level sets the minimum log level ("debug", "info", "warn", "error")
	Level string `env:"LEVEL" default:"info"`

	// Filter overrides Level per logger name prefix ("svc:warn,svc.sessionsvc:debug").
	// The longest matching prefix wins.
	Filter string `env:"FILTER" default:""`

	// JSON enables JSON-formatted output instead of human-readable console output
	JSON bool `env:"JSON" default:"false"`

	// Source adds the calling function and file to each entry
	Source bool `env:"SOURCE" default:"false"`

	// OutputHandle takes precedence over Output when set.
	OutputHandle io.Writer
}

//nolint:gochecknoglobals
var (
	Group = slog.Group

	config     LoggerConfig
	configLock sync.Mutex
)

// Configure sets the configuration used by every logger created afterwards.
// Loggers obtained before stay silent.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) error {
	if cfg.OutputHandle == nil {
		out, err := openOutput(cfg.Output)
		if err != nil {
			return fmt.Errorf("open log output: %w", err)
		}

		cfg.OutputHandle = out
	}

	cfg.AppName = appName

	configLock.Lock()
	config = cfg
	configLock.Unlock()

	slog.SetLogLoggerLevel(parseLevel(cfg.Level, LevelInfo))

	GetLogger("infra.logging").DebugContext(ctx, "logging configured", Group("config",
		"output", cfg.Output,
		"level", cfg.Level,
		"filter", cfg.Filter,
		"json", cfg.JSON,
		"source", cfg.Source,
	))

	return nil
}

func openOutput(name string) (io.Writer, error) {
	switch name {
	case "", "discard":
		return io.Discard, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return file, nil
}

// GetLogLogger creates a standard library *log.Logger that writes through a slog.Logger.
// The HTTP server uses it as its ErrorLog.
func GetLogLogger(logger Logger, level Level) *log.Logger {
	handler := logger.With("stdlog", true).Handler()

	return slog.NewLogLogger(handler, level)
}

// GetLogger returns the logger for a component. The name is dot separated
// ("svc.sessionsvc.store_session_service"), is written with every entry and
// selects the Filter override that applies.
func GetLogger(name string) Logger {
	configLock.Lock()
	cfg := config
	configLock.Unlock()

	if cfg.OutputHandle == nil || cfg.OutputHandle == io.Discard {
		return NewNopLogger()
	}

	level := cfg.levelFor(name)

	var handler Handler

	if cfg.JSON {
		//nolint:exhaustruct
		handler = slog.NewJSONHandler(cfg.OutputHandle, &slog.HandlerOptions{
			AddSource: cfg.Source,
			Level:     level,
		})
	} else {
		handler = NewConsoleHandler(cfg.OutputHandle, level, cfg.Source)
	}

	logger := slog.New(NewTracingHandler(handler))

	if cfg.AppName != "" {
		logger = logger.With("app", cfg.AppName)
	}

	return logger.With(loggerKey, name)
}

// levelFor walks "svc.sessionsvc" -> "svc" and returns the first Filter
// override found, or the configured Level.
func (cfg LoggerConfig) levelFor(name string) Level {
	overrides := cfg.filterLevels()

	for prefix := name; prefix != ""; {
		if level, ok := overrides[prefix]; ok {
			return level
		}

		i := strings.LastIndexByte(prefix, '.')
		if i < 0 {
			break
		}

		prefix = prefix[:i]
	}

	return parseLevel(cfg.Level, LevelInfo)
}

func (cfg LoggerConfig) filterLevels() map[string]Level {
	levels := make(map[string]Level)

	for entry := range strings.SplitSeq(cfg.Filter, ",") {
		prefix, level, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || prefix == "" {
			continue
		}

		levels[prefix] = parseLevel(level, LevelDebug)
	}

	return levels
}

func parseLevel(s string, fallback Level) Level {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return fallback
	}

	return level
}
