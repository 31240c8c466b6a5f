package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI escape sequences used by the console encoder.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiWhite  = "\033[37m"
	ansiGray   = "\033[90m"

	ansiBrightRed     = "\033[91m"
	ansiBrightGreen   = "\033[92m"
	ansiBrightYellow  = "\033[93m"
	ansiBrightBlue    = "\033[94m"
	ansiBrightMagenta = "\033[95m"
	ansiBrightCyan    = "\033[96m"
	ansiBrightWhite   = "\033[97m"
)

// Output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ColoredLogger wraps zap.Logger with colored output
type ColoredLogger struct {
	*zap.Logger
	enableColors bool
}

// Component tags a log line with the part of the client that emitted it.
type Component string

const (
	ComponentClient  Component = "CLIENT"
	ComponentCache   Component = "CACHE"
	ComponentStorage Component = "STORAGE"
	ComponentRetry   Component = "RETRY"
	ComponentAuth    Component = "AUTH"
	ComponentMockAPI Component = "MOCKAPI"
	ComponentCLI     Component = "CLI"
	ComponentGeneral Component = "GENERAL"
)

// Options configures New.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // console, json
	OutputFile string // empty for stdout
	Colors     bool   // console format only
}

var componentColors = map[Component]string{
	ComponentClient:  ansiBlue,
	ComponentCache:   ansiBrightCyan,
	ComponentStorage: ansiBrightYellow,
	ComponentRetry:   ansiBrightMagenta,
	ComponentAuth:    ansiGreen,
	ComponentMockAPI: ansiBrightGreen,
	ComponentCLI:     ansiBrightBlue,
	ComponentGeneral: ansiYellow,
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  ansiGray,
	zapcore.InfoLevel:   ansiBrightWhite,
	zapcore.WarnLevel:   ansiBrightYellow,
	zapcore.ErrorLevel:  ansiBrightRed,
	zapcore.DPanicLevel: ansiRed,
	zapcore.PanicLevel:  ansiRed,
	zapcore.FatalLevel:  ansiRed,
}

func colorFor[K comparable](m map[K]string, k K) string {
	if c, ok := m[k]; ok {
		return c
	}
	return ansiWhite
}

// coloredConsoleEncoder creates a compact console encoder: HH:MM:SS, one
// letter level, bare file name as caller.
func coloredConsoleEncoder(enableColors bool) zapcore.Encoder {
	config := zap.NewDevelopmentEncoderConfig()

	config.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		timeStr := t.Format("15:04:05")
		if enableColors {
			enc.AppendString(ansiDim + timeStr + ansiReset)
		} else {
			enc.AppendString(timeStr)
		}
	}

	config.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		levelStr := levelLetter(level)
		if enableColors {
			enc.AppendString(colorFor(levelColors, level) + ansiBold + levelStr + ansiReset)
		} else {
			enc.AppendString(levelStr)
		}
	}

	config.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := caller.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		file = strings.TrimSuffix(file, ".go")
		if enableColors {
			enc.AppendString(ansiDim + file + ansiReset)
		} else {
			enc.AppendString(file)
		}
	}

	return zapcore.NewConsoleEncoder(config)
}

func levelLetter(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "D"
	case zapcore.InfoLevel:
		return "I"
	case zapcore.WarnLevel:
		return "W"
	case zapcore.ErrorLevel:
		return "E"
	default:
		return "?"
	}
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds a logger from opts. The returned close function releases the
// output file, if any.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out     io.Writer = os.Stdout
		closeFn           = func() error { return nil }
	)
	if opts.OutputFile != "" {
		file, err := os.OpenFile(opts.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.OutputFile, err)
		}
		out = file
		closeFn = file.Close
	}

	var encoder zapcore.Encoder
	switch opts.Format {
	case "", FormatConsole:
		encoder = coloredConsoleEncoder(opts.Colors && opts.OutputFile == "")
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		_ = closeFn()
		return nil, nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core, zap.AddCaller()), closeFn, nil
}

// NewColoredLogger creates a debug-level colored console logger on stdout.
func NewColoredLogger(component Component, enableColors bool) (*ColoredLogger, error) {
	core := zapcore.NewCore(
		coloredConsoleEncoder(enableColors),
		zapcore.AddSync(os.Stdout),
		zapcore.DebugLevel,
	)
	logger := zap.New(core, zap.AddCaller()).With(zap.String("component", string(component)))

	return &ColoredLogger{
		Logger:       logger,
		enableColors: enableColors,
	}, nil
}

// Wrap adapts an existing zap logger to the component helpers.
func Wrap(logger *zap.Logger, enableColors bool) *ColoredLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ColoredLogger{Logger: logger, enableColors: enableColors}
}

func (l *ColoredLogger) tag(component Component, msg string) string {
	if l.enableColors {
		return fmt.Sprintf("%s[%s]%s %s", colorFor(componentColors, component), component, ansiReset, msg)
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}

// Component-specific logging methods
func (l *ColoredLogger) ComponentInfo(component Component, msg string, fields ...zap.Field) {
	l.Info(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentWarn(component Component, msg string, fields ...zap.Field) {
	l.Warn(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentError(component Component, msg string, fields ...zap.Field) {
	l.Error(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentDebug(component Component, msg string, fields ...zap.Field) {
	l.Debug(l.tag(component, msg), fields...)
}
