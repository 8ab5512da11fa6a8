package logger

import (
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileRotate struct {
	Filename   string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Options struct {
	Level       string // debug / info / warn / error
	JSON        bool
	AddCaller   bool
	Development bool
	Rotate      FileRotate
}

// New builds a console logger for development and a JSON one otherwise.
func New(level string, json bool) (*zap.Logger, func()) {
	return Build(Options{
		Level:       level,
		JSON:        json,
		AddCaller:   true,
		Development: !json,
	})
}

func Build(opt Options) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(opt.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	var enc zapcore.Encoder
	if opt.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.TimeKey = "ts"
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)}
	if opt.Rotate.Filename != "" {
		rotator := &lumberjack.Logger{
			Filename:   opt.Rotate.Filename,
			MaxSize:    max(1, opt.Rotate.MaxSizeMB),
			MaxBackups: max(0, opt.Rotate.MaxBackups),
			MaxAge:     max(0, opt.Rotate.MaxAgeDays),
			Compress:   opt.Rotate.Compress,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotator), lvl))
	}

	sampled := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	var opts []zap.Option
	if opt.AddCaller {
		opts = append(opts, zap.AddCaller())
	}
	if opt.Development {
		opts = append(opts, zap.Development())
	}
	l := zap.New(sampled, opts...)
	return l, func() { _ = l.Sync() }
}

// ToStdLogger adapts l for libraries that want a *log.Logger (GORM).
func ToStdLogger(l *zap.Logger, level zapcore.Level) *log.Logger {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		return zap.NewStdLog(l)
	}
	return std
}
