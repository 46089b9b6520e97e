// Package corelog wraps go.uber.org/zap the way the teacher's
// services/marketfeeds/common/logger and pkg/logger packages do, adapted
// to the spec's logging surface: level {DEBUG(10), INFO(20), WARNING(30),
// ERROR(40)} and color tags {NORMAL, GREEN, BLUE, MAGENTA, CYAN, YELLOW,
// RED}. logging_init is callable once per process; a second call returns
// an error rather than silently reinitializing global state, per the
// design notes on treating global logging as injected context.
package corelog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the spec's logging levels, distinct from zapcore.Level so
// callers never need to import zap directly.
type Level int

const (
	LevelDebug   Level = 10
	LevelInfo    Level = 20
	LevelWarning Level = 30
	LevelError   Level = 40
)

// ParseLevel converts a config string ("debug", "info", "warning",
// "error") into a Level, defaulting case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("corelog: unknown log level %q", s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ColorTag mirrors the spec's color tags for log line annotation.
type ColorTag string

const (
	ColorNormal  ColorTag = "NORMAL"
	ColorGreen   ColorTag = "GREEN"
	ColorBlue    ColorTag = "BLUE"
	ColorMagenta ColorTag = "MAGENTA"
	ColorCyan    ColorTag = "CYAN"
	ColorYellow  ColorTag = "YELLOW"
	ColorRed     ColorTag = "RED"
)

var ansiCodes = map[ColorTag]string{
	ColorNormal:  "\033[0m",
	ColorGreen:   "\033[32m",
	ColorBlue:    "\033[34m",
	ColorMagenta: "\033[35m",
	ColorCyan:    "\033[36m",
	ColorYellow:  "\033[33m",
	ColorRed:     "\033[31m",
}

// Logger is the handle every component holds: a *zap.Logger plus a
// color-tagging helper. Never accessed via a package-level global from
// component code; injected at construction, matching
// NewOrderLifecycleManager(db, logger, eventBus) and
// NewInMemoryEventBus(logger) in the teacher pack.
type Logger struct {
	*zap.Logger
}

// Tagged returns a child logger carrying a fixed color tag field, applied
// to every subsequent log call.
func (l *Logger) Tagged(tag ColorTag) *Logger {
	return &Logger{l.Logger.With(zap.String("color", string(tag)))}
}

var (
	initOnce   sync.Once
	initErr    error
	globalOnce sync.Once
)

// Init performs process-wide logging initialization exactly once. A
// second call returns an error instead of silently reinitializing,
// matching the design note that global logging is init-once with
// error-on-double-init semantics.
func Init(level Level, colored bool) (*Logger, error) {
	var logger *Logger
	first := false
	initOnce.Do(func() {
		first = true
		logger, initErr = build(level, colored)
	})
	if !first {
		return nil, fmt.Errorf("corelog: logging_init already called for this process")
	}
	return logger, initErr
}

// New builds a Logger without enforcing the once-per-process constraint;
// used by components and tests that want an independent logger instance
// (e.g. zaptest loggers) rather than the process-wide singleton.
func New(level Level, colored bool) (*Logger, error) {
	return build(level, colored)
}

func build(level Level, colored bool) (*Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if colored {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level.zapLevel(),
	)

	zl := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return &Logger{zl}, nil
}

// Colorize wraps text in the ANSI escape sequence for the given tag,
// resetting afterwards. The loggers built by this package do not call it;
// it is not applied to structured JSON log fields.
func Colorize(tag ColorTag, text string) string {
	code, ok := ansiCodes[tag]
	if !ok {
		code = ansiCodes[ColorNormal]
	}
	return code + text + ansiCodes[ColorNormal]
}

// Slog bridges a zap core to log/slog, the way
// services/marketfeeds/common/logger/logger.go does, for any downstream
// consumer that only accepts the standard library logging interface.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(zapslog.NewHandler(l.Core()))
}

// resetForTest clears the once-guard; only ever called from tests in this
// package, never from production code.
func resetForTest() {
	initOnce = sync.Once{}
	initErr = nil
}
