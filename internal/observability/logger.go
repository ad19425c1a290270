// File: internal/observability/logger.go
package observability

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/xkilldash9x/soko-cli/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	current atomic.Pointer[zap.Logger]
	once    sync.Once
)

const (
	timeLayout = "2006-01-02T15:04:05.000Z07:00"
	ansiReset  = "\x1b[0m"
)

// ansiColors are the names accepted under logger.colors.
var ansiColors = map[string]string{
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
}

// Initialize builds the process logger once. Console output goes to
// consoleWriter in cfg.Format; the optional log file is always JSON at debug
// level so `soko logs` sees everything.
func Initialize(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) {
	once.Do(func() {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		cores := []zapcore.Core{zapcore.NewCore(consoleEncoder(cfg), consoleWriter, level)}
		if cfg.LogFile != "" {
			cores = append(cores, fileCore(cfg))
		}

		opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			opts = append(opts, zap.AddCaller())
		}
		logger := zap.New(zapcore.NewTee(cores...), opts...)
		if cfg.ServiceName != "" {
			logger = logger.Named(cfg.ServiceName)
		}
		current.Store(logger)
		zap.ReplaceGlobals(logger)
	})
}

// InitializeLogger logs to stderr. Stdout belongs to command output.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stderr))
}

// ResetForTest forgets the process logger. Tests only.
func ResetForTest() {
	current.Store(nil)
	once = sync.Once{}
}

func fileCore(cfg config.LoggerConfig) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), zap.DebugLevel)
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}

func consoleEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	ec := encoderConfig()
	if cfg.Format != "console" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = levelPainter(cfg.Colors)
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}

// levelPainter wraps each level name in its configured color. Unknown or empty
// color names leave the level plain.
func levelPainter(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  colors.Debug,
		zapcore.InfoLevel:   colors.Info,
		zapcore.WarnLevel:   colors.Warn,
		zapcore.ErrorLevel:  colors.Error,
		zapcore.DPanicLevel: colors.DPanic,
		zapcore.PanicLevel:  colors.Panic,
		zapcore.FatalLevel:  colors.Fatal,
	}
	painted := make(map[zapcore.Level]string, len(byLevel))
	for level, name := range byLevel {
		text := level.CapitalString()
		if code, ok := ansiColors[strings.ToLower(name)]; ok {
			text = code + text + ansiReset
		}
		painted[level] = text
	}
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if text, ok := painted[level]; ok {
			enc.AppendString(text)
			return
		}
		enc.AppendString(level.CapitalString())
	}
}

// GetLogger returns the process logger, or a no-op logger before
// initialization so packages never write to an unconfigured terminal.
func GetLogger() *zap.Logger {
	if logger := current.Load(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

// Sync flushes buffered entries. Call it before exiting.
func Sync() {
	logger := current.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !ignorableSyncError(err) {
		fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
	}
}

// ignorableSyncError reports fsync failures on terminals and pipes, which
// several platforms return for stderr.
func ignorableSyncError(err error) bool {
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.ENOTSUP) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "/dev/stderr") || strings.Contains(msg, "/dev/stdout")
}
