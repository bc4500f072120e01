package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NixoN2/fmfuzz-evaluation/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerHonorsLevel(t *testing.T) {
	lg := NewLogger(&config.AppConfig{LogLevel: "error"})
	require.False(t, lg.Core().Enabled(zap.InfoLevel))
	require.True(t, lg.Core().Enabled(zap.ErrorLevel))
}

func TestLaunchLogAppendsOneLinePerEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.log")

	lg, closeFn, err := NewLaunchLog(path)
	require.NoError(t, err)
	lg.Info("launching solver", zap.Int("pid", 1234), zap.String("binary", "/abs/cvc5"))
	closeFn()

	// A second invocation must append, not truncate.
	lg, closeFn, err = NewLaunchLog(path)
	require.NoError(t, err)
	lg.Info("launching solver", zap.Int("pid", 5678), zap.String("binary", "/abs/cvc5"))
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "1234")
	require.Contains(t, lines[1], "5678")
}
