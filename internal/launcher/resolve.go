package launcher

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	ErrBinaryNotFound  = errors.New("real solver binary not found")
	ErrLibraryNotFound = errors.New("coverage tracker library not found")
)

// ResolveFirst scans candidates in priority order and returns the first one
// that exists as a regular file, converted to an absolute canonical path.
// Absoluteness matters: the dynamic loader resolves relative LD_PRELOAD
// entries against the solver's working directory at exec time, not ours.
func ResolveFirst(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if canonical, err := filepath.EvalSymlinks(abs); err == nil {
			abs = canonical
		}
		return abs, true
	}
	return "", false
}

// selfInstallDir locates the directory the launcher was installed to, from
// its own invocation path. Self-relative candidates must not depend on the
// working directory, which the fuzz driver changes at will.
func selfInstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if canonical, err := filepath.EvalSymlinks(exe); err == nil {
		exe = canonical
	}
	return filepath.Dir(exe), nil
}
