package logger

import (
	"os"
	"strings"

	"github.com/NixoN2/fmfuzz-evaluation/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(cfg *config.AppConfig) *zap.Logger {
	level := zapcore.InfoLevel
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var zcfg zap.Config
	if level > zapcore.InfoLevel {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	lg, err := zcfg.Build()
	if err != nil {
		// log failed to build, return a default one
		return zap.NewExample()
	}
	return lg
}

// NewLaunchLog opens an append-only logger over the launch log file. Every
// entry is encoded into a single buffer and handed to the file in one write,
// so concurrent launcher invocations may interleave lines but never bytes
// within a line. The returned close func releases the file handle; exec
// replaces the image anyway, it exists for the error paths and for tests.
func NewLaunchLog(path string) (*zap.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(f)),
		zapcore.InfoLevel,
	)

	lg := zap.New(core)
	closeFn := func() {
		_ = lg.Sync()
		_ = f.Close()
	}
	return lg, closeFn, nil
}
