package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "announcer.log"

type options struct {
	level   zapcore.Level
	console bool
}

type Option func(*options)

// WithLevel accepts zap level names ("debug", "info", ...); unknown names keep info.
func WithLevel(name string) Option {
	return func(o *options) {
		if l, err := zapcore.ParseLevel(name); err == nil {
			o.level = l
		}
	}
}

// WithConsole also writes to stderr, for local runs.
func WithConsole(on bool) Option {
	return func(o *options) { o.console = on }
}

// NewLogger writes JSON lines to a rotating file under logDir.
func NewLogger(logDir string, opts ...Option) (*zap.Logger, error) {
	o := options{level: zap.InfoLevel}
	for _, fn := range opts {
		fn(&o)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, o.level)
	if o.console {
		console := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), o.level)
		core = zapcore.NewTee(core, console)
	}
	return zap.New(core).With(zap.String("app", "announcer")), nil
}
