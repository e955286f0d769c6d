// File: internal/observability/logger.go
package observability

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xkilldash9x/clawlogin/internal/config"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

const colorReset = "\x1b[0m"

// ANSI codes by the color names accepted in logger.colors.
var colorCodes = map[string]string{
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
}

// Initialize builds the global logger once. Console output goes to
// consoleWriter in cfg.Format; cfg.LogFile adds a rotated JSON sink. Values
// registered with Redact are scrubbed from both.
func Initialize(cfg config.LoggerConfig, consoleWriter zapcore.WriteSyncer) {
	once.Do(func() {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		core := zapcore.NewCore(newEncoder(cfg.Format, cfg.Colors), consoleWriter, level)
		if cfg.LogFile != "" {
			rotated := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			core = zapcore.NewTee(core, zapcore.NewCore(newEncoder("json", cfg.Colors), zapcore.AddSync(rotated), level))
		}

		options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			options = append(options, zap.AddCaller())
		}

		logger := zap.New(newRedactingCore(core), options...).Named(cfg.ServiceName)
		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// InitializeLogger initializes the global logger on a locked stdout.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stdout))
}

// ResetForTest clears the global logger and the registered redactions.
// Only for tests.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
	resetRedactions()
}

func newLevelEncoder(colors config.ColorConfig) zapcore.LevelEncoder {
	names := map[zapcore.Level]string{
		zapcore.DebugLevel:  colors.Debug,
		zapcore.InfoLevel:   colors.Info,
		zapcore.WarnLevel:   colors.Warn,
		zapcore.ErrorLevel:  colors.Error,
		zapcore.DPanicLevel: colors.DPanic,
		zapcore.PanicLevel:  colors.Panic,
		zapcore.FatalLevel:  colors.Fatal,
	}
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if code, ok := colorCodes[names[level]]; ok {
			enc.AppendString(code + level.CapitalString() + colorReset)
			return
		}
		enc.AppendString(level.CapitalString())
	}
}

// newEncoder returns a colorized console encoder for "console" and JSON otherwise.
func newEncoder(format string, colors config.ColorConfig) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	if format != "console" {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = newLevelEncoder(colors)
	encCfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(encCfg)
}

// GetLogger returns the global logger, or a development logger before Initialize.
func GetLogger() *zap.Logger {
	if logger := globalLogger.Load(); logger != nil {
		return logger
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	l.Warn("Global logger requested before initialization; using fallback.")
	return l.Named("fallback")
}

// ForRun returns the global logger tagged with the run identifier.
func ForRun(runID string) *zap.Logger {
	return GetLogger().With(zap.String("run_id", runID))
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	logger := globalLogger.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil && !isTerminalSyncError(err) {
		fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
	}
}

// isTerminalSyncError reports the errors fsync returns for ttys and pipes.
func isTerminalSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTTY) ||
		errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EBADF)
}
