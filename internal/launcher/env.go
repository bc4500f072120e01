package launcher

import (
	"os"
	"strings"
)

// Environment is a snapshot of the process environment, captured once at
// startup and never re-read. The launcher mutates the snapshot, not the real
// environment; the mutated copy becomes the environment of the exec'd solver.
type Environment struct {
	entries []string       // KEY=VALUE in original order
	index   map[string]int // key -> position in entries
}

// SnapshotEnvironment captures the current process environment.
func SnapshotEnvironment() *Environment {
	return NewEnvironment(os.Environ())
}

// NewEnvironment builds a snapshot from explicit KEY=VALUE entries. Later
// duplicates win, matching exec semantics.
func NewEnvironment(entries []string) *Environment {
	env := &Environment{
		entries: make([]string, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		env.Set(key, value)
	}
	return env
}

// Get returns the value for key, or "" when unset.
func (e *Environment) Get(key string) string {
	i, ok := e.index[key]
	if !ok {
		return ""
	}
	_, value, _ := strings.Cut(e.entries[i], "=")
	return value
}

// Set overwrites key in place, preserving the original entry order, or
// appends when the key is new.
func (e *Environment) Set(key, value string) {
	entry := key + "=" + value
	if i, ok := e.index[key]; ok {
		e.entries[i] = entry
		return
	}
	e.index[key] = len(e.entries)
	e.entries = append(e.entries, entry)
}

// Slice returns the snapshot in the KEY=VALUE form exec expects.
func (e *Environment) Slice() []string {
	return e.entries
}
