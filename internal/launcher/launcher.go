package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NixoN2/fmfuzz-evaluation/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Names the launcher falls back to when no override is supplied. The real
// solver is renamed to cvc5-real at build time so the driver execs the
// launcher in its place.
const (
	realBinaryName = "cvc5-real"
	trackerLibName = "libsancov_tracker.so"
)

// Launcher resolves the real solver and the coverage tracker, repairs the
// stripped environment, and replaces the current process image with the
// solver. One launcher invocation per fuzz iteration; no state survives it.
type Launcher struct {
	cfg       *config.AppConfig
	env       *Environment
	logger    *zap.Logger
	launchLog *zap.Logger

	// execImage is unix.Exec in production; tests substitute a capture.
	execImage func(argv0 string, argv []string, envv []string) error
}

func New(cfg *config.AppConfig, logger *zap.Logger, launchLog *zap.Logger) *Launcher {
	return &Launcher{
		cfg:       cfg,
		env:       SnapshotEnvironment(),
		logger:    logger,
		launchLog: launchLog,
		execImage: unix.Exec,
	}
}

// Launch resolves paths, rebuilds the injection environment, records the
// decision, and execs the solver with the caller's arguments. On success it
// never returns. Every error it does return is terminal; the driver counts
// the iteration as failed and moves on.
func (l *Launcher) Launch(args []string) error {
	selfDir, err := selfInstallDir()
	if err != nil {
		// Degrades to cwd-relative and configured candidates only.
		l.logger.Warn("cannot determine own install dir", zap.Error(err))
		selfDir = ""
	}

	binary, err := l.resolveBinary(selfDir)
	if err != nil {
		l.launchLog.Error("launch failed", zap.Int("pid", os.Getpid()), zap.Error(err))
		return err
	}

	tracker, err := l.resolveTracker(selfDir)
	if err != nil {
		l.launchLog.Error("launch failed", zap.Int("pid", os.Getpid()), zap.Error(err))
		return err
	}

	l.env.Set(config.EnvPreload, buildPreload(tracker, l.env.Get(config.EnvPreload)))

	shmID := l.env.Get(config.EnvCoverageSHM)
	if shmID == "" {
		// The driver usually propagates the shm id, but nothing guarantees
		// it. An uncorrelated run beats a tracker with no channel name.
		shmID = synthesizeChannelID()
		l.env.Set(config.EnvCoverageSHM, shmID)
	}

	l.launchLog.Info("launching solver",
		zap.Int("pid", os.Getpid()),
		zap.String("binary", binary),
		zap.String("tracker", tracker),
		zap.String("shm_id", shmID),
		zap.Strings("argv", args))
	_ = l.launchLog.Sync()

	argv := append([]string{binary}, args...)
	if err := l.execImage(binary, argv, l.env.Slice()); err != nil {
		l.launchLog.Error("exec failed", zap.Int("pid", os.Getpid()), zap.String("binary", binary), zap.Error(err))
		return fmt.Errorf("failed to exec %s: %w", binary, err)
	}
	return nil // unreachable: exec replaced the image
}

func (l *Launcher) resolveBinary(selfDir string) (string, error) {
	candidates := l.binaryCandidates(selfDir)
	if path, ok := ResolveFirst(candidates); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: tried %s", ErrBinaryNotFound, strings.Join(candidates, ", "))
}

func (l *Launcher) resolveTracker(selfDir string) (string, error) {
	candidates := l.trackerCandidates(selfDir)
	if path, ok := ResolveFirst(candidates); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: tried %s", ErrLibraryNotFound, strings.Join(candidates, ", "))
}

// Candidate order is a priority ranking: explicit override, deployment
// overrides file, self-relative install layouts, cwd-relative build tree.
func (l *Launcher) binaryCandidates(selfDir string) []string {
	var candidates []string
	if l.cfg.TargetOverride != "" {
		candidates = append(candidates, l.cfg.TargetOverride)
	}
	candidates = append(candidates, l.cfg.ExtraTargetPaths...)
	if selfDir != "" {
		candidates = append(candidates,
			filepath.Join(selfDir, realBinaryName),
			filepath.Join(selfDir, "..", "real", "cvc5"),
		)
	}
	return append(candidates, filepath.Join("build", "bin", realBinaryName))
}

func (l *Launcher) trackerCandidates(selfDir string) []string {
	var candidates []string
	if l.cfg.TrackerOverride != "" {
		candidates = append(candidates, l.cfg.TrackerOverride)
	}
	candidates = append(candidates, l.cfg.ExtraTrackerPaths...)
	if selfDir != "" {
		candidates = append(candidates,
			filepath.Join(selfDir, trackerLibName),
			filepath.Join(selfDir, "..", "lib", trackerLibName),
		)
	}
	return append(candidates, filepath.Join("build", "lib", trackerLibName))
}

// buildPreload prepends the tracker to any preload list an outer tool
// already queued, so multiple injected libraries coexist in priority order.
func buildPreload(library, existing string) string {
	if existing == "" {
		return library
	}
	return library + ":" + existing
}

// synthesizeChannelID makes a channel name unique per invocation. Runs
// launched this way cannot be correlated by the collector, but the tracker
// still has somewhere to write.
func synthesizeChannelID() string {
	return fmt.Sprintf("cov-%d-%d-%s", os.Getpid(), time.Now().UnixNano(), uuid.NewString()[:8])
}
