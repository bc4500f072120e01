package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Environment variables consumed by the launcher and the stager. All of them
// are optional: the fuzz driver is known to strip the environment before
// exec, so every value has a filesystem fallback.
const (
	EnvTarget      = "FMFUZZ_TARGET"   // explicit path to the real solver binary
	EnvTracker     = "FMFUZZ_TRACKER"  // explicit path to the coverage tracker library
	EnvConfigFile  = "FMFUZZ_CONFIG"   // path to the YAML overrides file
	EnvLaunchLog   = "FMFUZZ_LOG"      // path to the append-only launch log
	EnvCoverageSHM = "COVERAGE_SHM_ID" // coverage channel id, synthesized when absent
	EnvPreload     = "LD_PRELOAD"      // injection variable, prepended to, never replaced
	EnvLogLevel    = "LOG_LEVEL"
)

const (
	defaultLaunchLog  = "/tmp/fmfuzz-launch.log"
	overridesFileName = "fmfuzz.yaml"
)

type AppConfig struct {
	TargetOverride  string // FMFUZZ_TARGET, consulted before the fallback chain
	TrackerOverride string // FMFUZZ_TRACKER, same
	LaunchLogPath   string
	LogLevel        string

	// Deployment-specific candidate paths loaded from the overrides file.
	// These rank after the explicit env overrides and before the built-in
	// self-relative and cwd-relative fallbacks.
	ExtraTargetPaths  []string
	ExtraTrackerPaths []string
}

// overridesFile is the on-disk shape of the optional YAML config. CI images
// drop one next to the launcher instead of baking their absolute paths into
// the binary.
type overridesFile struct {
	TargetPaths  []string `yaml:"target_paths"`
	TrackerPaths []string `yaml:"tracker_paths"`
}

func LoadConfig() *AppConfig {
	// use a temporary logger for now
	logger := zap.NewExample().Named("config")

	godotenv.Load()

	config := &AppConfig{
		TargetOverride:  os.Getenv(EnvTarget),
		TrackerOverride: os.Getenv(EnvTracker),
		LaunchLogPath:   os.Getenv(EnvLaunchLog),
		LogLevel:        os.Getenv(EnvLogLevel),
	}

	if config.LaunchLogPath == "" {
		config.LaunchLogPath = defaultLaunchLog
	}
	if config.LogLevel == "" {
		config.LogLevel = "info" // Set default log level
	}

	if path := overridesPath(); path != "" {
		if err := config.loadOverrides(path); err != nil {
			// A broken overrides file must not kill a fuzz iteration;
			// the built-in fallback chain still applies.
			logger.Warn("ignoring overrides file", zap.String("path", path), zap.Error(err))
		}
	}

	return config
}

// overridesPath picks the overrides file location: the env override first,
// then a file sitting next to the launcher itself. Returns "" when neither
// exists.
func overridesPath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	path := filepath.Join(filepath.Dir(exe), overridesFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *AppConfig) loadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read overrides file: %w", err)
	}
	var overrides overridesFile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse overrides file: %w", err)
	}
	c.ExtraTargetPaths = overrides.TargetPaths
	c.ExtraTrackerPaths = overrides.TrackerPaths
	return nil
}
