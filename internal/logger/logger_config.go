package logger

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/mini-maxit/taucheck/pkg/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeKey   = "time"
	levelKey  = "level"
	sourceKey = "source"
	msgKey    = "msg"
)

var (
	mu          sync.Mutex
	sugarLogger *zap.SugaredLogger
	level       = zap.NewAtomicLevelAt(zap.WarnLevel)
)

// getLogPath returns the path of the rotating log file, or "" when file logging is disabled.
func getLogPath() string {
	logDir := os.Getenv(constants.EnvLogDir)
	if logDir == "" {
		return ""
	}

	return filepath.Join(logDir, constants.DefaultLogFileName)
}

func initializeLogger() {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        timeKey,
		LevelKey:       levelKey,
		NameKey:        sourceKey,
		MessageKey:     msgKey,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	// Logs go to stderr so the report on stdout stays machine readable.
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(zapcore.AddSync(os.Stderr)),
			level,
		),
	}

	if logPath := getLogPath(); logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
			w := zapcore.AddSync(&lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    50,
				MaxBackups: 10,
				MaxAge:     28,
				Compress:   true,
				LocalTime:  true,
			})
			cores = append(cores, zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig),
				w,
				zap.InfoLevel,
			))
		}
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	sugarLogger = log.Sugar()
}

// SetVerbosity maps the CLI verbosity count to a stderr log level:
// 0 warnings and errors, 1 info, 2 and above debug.
func SetVerbosity(verbosity int) {
	switch {
	case verbosity <= 0:
		level.SetLevel(zap.WarnLevel)
	case verbosity == 1:
		level.SetLevel(zap.InfoLevel)
	default:
		level.SetLevel(zap.DebugLevel)
	}
}

// Sync flushes buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if sugarLogger != nil {
		_ = sugarLogger.Sync()
	}
}

// NewNamedLogger creates a new named SugaredLogger for a given component.
func NewNamedLogger(name string) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugarLogger == nil {
		initializeLogger()
	}
	return sugarLogger.Named(name)
}
