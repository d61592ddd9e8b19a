// Package obslog provides centralized logging infrastructure for jn.
// It supports console and file handlers with independently configurable
// levels, built on zerolog.
package obslog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level represents a logging level, independent of zerolog's own enum so
// call sites don't need to import zerolog directly.
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	DisabledLevel
)

func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case DisabledLevel:
		return "disabled"
	default:
		return "unknown"
	}
}

func (l Level) toZerolog() zerolog.Level {
	switch l {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case DisabledLevel:
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// Config controls where and how verbosely jn logs.
type Config struct {
	ConsoleLevel Level
	FileLevel    Level
	LogFile      string
	NoColor      bool
}

// DefaultConfig logs warnings+ to the console and debug+ to the default log file.
func DefaultConfig() Config {
	return Config{
		ConsoleLevel: WarnLevel,
		FileLevel:    DebugLevel,
		LogFile:      defaultLogFile(),
		NoColor:      false,
	}
}

func defaultLogFile() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "jn", "jn.log")
		}
		cacheDir = filepath.Join(homeDir, ".cache")
	}
	return filepath.Join(cacheDir, "jn", "jn.log")
}

// Logger wraps zerolog.Logger with jn's Level vocabulary.
type Logger struct {
	logger zerolog.Logger
}

func (l *Logger) Trace() *zerolog.Event { return l.logger.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) With() zerolog.Context { return l.logger.With() }

// levelWriter gates a writer to only accept entries at or above Level.
type levelWriter struct {
	Writer io.Writer
	Level  Level
}

func (lw levelWriter) Write(p []byte) (int, error) { return lw.Writer.Write(p) }

func (lw levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var ourLevel Level
	switch level {
	case zerolog.TraceLevel:
		ourLevel = TraceLevel
	case zerolog.DebugLevel:
		ourLevel = DebugLevel
	case zerolog.InfoLevel:
		ourLevel = InfoLevel
	case zerolog.WarnLevel:
		ourLevel = WarnLevel
	case zerolog.ErrorLevel:
		ourLevel = ErrorLevel
	default:
		ourLevel = WarnLevel
	}
	if ourLevel >= lw.Level {
		return lw.Writer.Write(p)
	}
	return len(p), nil
}

// Setup builds a Logger from Config, wiring console and/or file handlers.
func Setup(cfg Config) (*Logger, error) {
	var writers []zerolog.LevelWriter

	if cfg.ConsoleLevel != DisabledLevel {
		console := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
		writers = append(writers, levelWriter{Writer: console, Level: cfg.ConsoleLevel})
	}

	if cfg.FileLevel != DisabledLevel && cfg.LogFile != "" {
		logDir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", logDir, err)
		}
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
		}
		writers = append(writers, levelWriter{Writer: file, Level: cfg.FileLevel})
	}

	var writer zerolog.LevelWriter
	switch len(writers) {
	case 0:
		writer = levelWriter{Writer: io.Discard, Level: DisabledLevel}
	case 1:
		writer = writers[0]
	default:
		ioWriters := make([]io.Writer, len(writers))
		for i, w := range writers {
			ioWriters[i] = w
		}
		writer = zerolog.MultiLevelWriter(ioWriters...)
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()

	minLevel := cfg.ConsoleLevel
	if cfg.FileLevel < minLevel {
		minLevel = cfg.FileLevel
	}
	zerolog.SetGlobalLevel(minLevel.toZerolog())

	return &Logger{logger: logger}, nil
}

// SetupFromVerbosity maps a CLI -v count to console verbosity:
// 0 = warn console / debug file, 1 = info, 2 = debug, 3 = trace.
func SetupFromVerbosity(verbosity int) (*Logger, error) {
	cfg := DefaultConfig()
	switch {
	case verbosity >= 3:
		cfg.ConsoleLevel = TraceLevel
	case verbosity == 2:
		cfg.ConsoleLevel = DebugLevel
	case verbosity == 1:
		cfg.ConsoleLevel = InfoLevel
	}
	return Setup(cfg)
}

var global *Logger

// InitGlobalFromVerbosity initializes the package-level logger from a -v count.
func InitGlobalFromVerbosity(verbosity int) error {
	logger, err := SetupFromVerbosity(verbosity)
	if err != nil {
		return err
	}
	global = logger
	return nil
}

// Get returns the global logger, lazily initializing it with defaults.
func Get() *Logger {
	if global == nil {
		logger, err := Setup(DefaultConfig())
		if err != nil {
			global = &Logger{logger: log.Logger}
			return global
		}
		global = logger
	}
	return global
}
