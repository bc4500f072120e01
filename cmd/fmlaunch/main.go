package main

import (
	"fmt"
	"os"

	"github.com/NixoN2/fmfuzz-evaluation/config"
	"github.com/NixoN2/fmfuzz-evaluation/internal/launcher"
	"github.com/NixoN2/fmfuzz-evaluation/pkg/logger"
	"go.uber.org/zap"
)

// fmlaunch stands in for the solver binary the fuzz driver execs. It is
// deliberately a plain main: one launcher process runs per fuzz iteration
// and lives only long enough to resolve paths and exec the real solver.
func main() {
	cfg := config.LoadConfig()

	lg := logger.NewLogger(cfg)
	defer lg.Sync()

	launchLog, closeLog, err := logger.NewLaunchLog(cfg.LaunchLogPath)
	if err != nil {
		// The record is diagnostics, not a precondition; launch anyway.
		lg.Warn("cannot open launch log", zap.String("path", cfg.LaunchLogPath), zap.Error(err))
		launchLog = zap.NewNop()
	} else {
		defer closeLog()
	}

	l := launcher.New(cfg, lg, launchLog)
	if err := l.Launch(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fmlaunch: %v\n", err)
		os.Exit(1)
	}
}
