// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// coursehost writes lifecycle and resolution events to one JSON log per day
// under `<root>/logs/YYYY-MM-DD.log`.  When running in an interactive TTY
// the same events are teed, human-readable, to stdout.  Rotation,
// compression, and retention are handled by Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Paths.Root, logger.Options{Tee: isTTY})
//	if err != nil { … }
//	log.Infow("resolver online", "main_host", cfg.Site.MainHost)
//
// Notes
// -----
// • ISO-8601 timestamps and lowercase levels.
// • Level comes from Options.Level, then COURSEHOST_LOG_LEVEL, then info.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options tunes New.
type Options struct {
	Level string // debug, info, warn, error
	Tee   bool   // also write to stdout
}

// New returns a *zap.SugaredLogger writing JSON to <rootDir>/logs and
// installs it process-wide via zap.ReplaceGlobals.
func New(rootDir string, opts Options) (*zap.SugaredLogger, error) {
	logDir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, time.Now().Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), level),
	}
	if opts.Tee {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stdout),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	// Make this the global logger so zap.L() works everywhere after startup.
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", opts.Tee, "level", level.String())
	return z, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		s = os.Getenv("COURSEHOST_LOG_LEVEL")
	}
	if s == "" {
		return zap.InfoLevel, nil
	}
	return zapcore.ParseLevel(s)
}
