package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(EnvTarget, "")
	t.Setenv(EnvTracker, "")
	t.Setenv(EnvLaunchLog, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvConfigFile, "")

	cfg := LoadConfig()
	require.Equal(t, "", cfg.TargetOverride)
	require.Equal(t, "", cfg.TrackerOverride)
	require.Equal(t, defaultLaunchLog, cfg.LaunchLogPath)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv(EnvTarget, "/opt/cvc5/bin/cvc5")
	t.Setenv(EnvTracker, "/opt/cvc5/lib/libsancov_tracker.so")
	t.Setenv(EnvLaunchLog, "/var/log/fmfuzz.log")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvConfigFile, "")

	cfg := LoadConfig()
	require.Equal(t, "/opt/cvc5/bin/cvc5", cfg.TargetOverride)
	require.Equal(t, "/opt/cvc5/lib/libsancov_tracker.so", cfg.TrackerOverride)
	require.Equal(t, "/var/log/fmfuzz.log", cfg.LaunchLogPath)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fmfuzz.yaml")
	overrides := `target_paths:
  - /ci/cache/cvc5-real
  - /builds/cvc5/build/bin/cvc5-real
tracker_paths:
  - /ci/cache/libsancov_tracker.so
`
	require.NoError(t, os.WriteFile(path, []byte(overrides), 0o644))
	t.Setenv(EnvConfigFile, path)

	cfg := LoadConfig()
	require.Equal(t, []string{"/ci/cache/cvc5-real", "/builds/cvc5/build/bin/cvc5-real"}, cfg.ExtraTargetPaths)
	require.Equal(t, []string{"/ci/cache/libsancov_tracker.so"}, cfg.ExtraTrackerPaths)
}

func TestLoadConfigBrokenOverridesFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fmfuzz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{target_paths: ["), 0o644))
	t.Setenv(EnvConfigFile, path)

	cfg := LoadConfig()
	require.Empty(t, cfg.ExtraTargetPaths)
	require.Empty(t, cfg.ExtraTrackerPaths)
}
