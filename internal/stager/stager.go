package stager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NixoN2/fmfuzz-evaluation/internal/utils"
	"go.uber.org/zap"
)

var ErrBuildRootMissing = errors.New("build root missing")

// Category names one class of build output the bundle carries. Counts are
// reported per category; they never influence control flow.
type Category string

const (
	CategoryBinary          Category = "binary"
	CategoryCompileMetadata Category = "compile-metadata"
	CategoryBuildCache      Category = "build-cache-manifest"
	CategoryTestManifests   Category = "test-manifests"
	CategoryHeaders         Category = "headers"
	CategoryCoverageNotes   Category = "coverage-notes"
)

// Config describes what to pull out of the build tree. Original sources are
// deliberately not a category: the coverage resolver finds them through the
// matching checkout, and duplicating them into every bundle buys nothing.
type Config struct {
	BinaryRelPath    string   // solver binary, fixed relative path
	CompileMetadata  string   // top-level, optional
	BuildCacheFile   string   // top-level, optional
	TestManifestName string   // matched by exact name at any depth
	HeaderExts       []string // matched by extension at any depth
	CoverageNoteExts []string // same
}

// DefaultConfig matches the cvc5 CMake build tree.
func DefaultConfig() Config {
	return Config{
		BinaryRelPath:    filepath.Join("bin", "cvc5"),
		CompileMetadata:  "compile_commands.json",
		BuildCacheFile:   "CMakeCache.txt",
		TestManifestName: "CTestTestfile.cmake",
		HeaderExts:       []string{".h", ".hpp"},
		CoverageNoteExts: []string{".gcno"},
	}
}

// Summary reports what one staging run copied.
type Summary struct {
	BinaryPresent bool
	TopLevel      map[string]bool // optional top-level artifact -> present
	Counts        map[Category]int
}

// Stager copies selected build outputs into a portable bundle whose relative
// layout exactly mirrors the build tree. Coverage-note files embed paths the
// downstream resolver matches against the tree shape, so flattening or
// renaming would silently break coverage attribution.
type Stager struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Stager {
	return &Stager{cfg: cfg, logger: logger}
}

// Stage copies every matched file under buildRoot to the identical relative
// path under outputRoot. A missing build root is fatal; a missing binary or
// missing optional top-level artifact is not.
func (s *Stager) Stage(buildRoot, outputRoot string) (*Summary, error) {
	info, err := os.Stat(buildRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrBuildRootMissing, buildRoot)
	}

	summary := &Summary{
		TopLevel: make(map[string]bool),
		Counts: map[Category]int{
			CategoryBinary:          0,
			CategoryCompileMetadata: 0,
			CategoryBuildCache:      0,
			CategoryTestManifests:   0,
			CategoryHeaders:         0,
			CategoryCoverageNotes:   0,
		},
	}

	if err := s.stageBinary(buildRoot, outputRoot, summary); err != nil {
		return nil, err
	}
	if err := s.stageTopLevel(buildRoot, outputRoot, s.cfg.CompileMetadata, CategoryCompileMetadata, summary); err != nil {
		return nil, err
	}
	if err := s.stageTopLevel(buildRoot, outputRoot, s.cfg.BuildCacheFile, CategoryBuildCache, summary); err != nil {
		return nil, err
	}
	if err := s.stageRecursive(buildRoot, outputRoot, summary); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *Stager) stageBinary(buildRoot, outputRoot string, summary *Summary) error {
	src := filepath.Join(buildRoot, s.cfg.BinaryRelPath)
	if _, err := os.Stat(src); err != nil {
		// A coverage-only or metadata-only bundle is still useful.
		s.logger.Warn("solver binary not found in build tree", zap.String("path", src))
		return nil
	}

	dst := filepath.Join(outputRoot, s.cfg.BinaryRelPath)
	if err := copyPreservingPath(src, dst); err != nil {
		return err
	}
	if err := os.Chmod(dst, 0o755); err != nil {
		return fmt.Errorf("failed to mark binary executable: %w", err)
	}

	summary.BinaryPresent = true
	summary.Counts[CategoryBinary]++
	return nil
}

func (s *Stager) stageTopLevel(buildRoot, outputRoot, name string, category Category, summary *Summary) error {
	src := filepath.Join(buildRoot, name)
	if _, err := os.Stat(src); err != nil {
		summary.TopLevel[name] = false
		return nil // optional artifact, silently skipped
	}
	if err := copyPreservingPath(src, filepath.Join(outputRoot, name)); err != nil {
		return err
	}
	summary.TopLevel[name] = true
	summary.Counts[category]++
	return nil
}

func (s *Stager) stageRecursive(buildRoot, outputRoot string, summary *Summary) error {
	return filepath.WalkDir(buildRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		category, ok := s.classify(d.Name())
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(buildRoot, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		if rel == s.cfg.BinaryRelPath || rel == s.cfg.CompileMetadata || rel == s.cfg.BuildCacheFile {
			return nil // already staged above
		}

		if err := copyPreservingPath(path, filepath.Join(outputRoot, rel)); err != nil {
			return err
		}
		summary.Counts[category]++
		return nil
	})
}

// classify matches a file name against the recursively staged categories.
func (s *Stager) classify(name string) (Category, bool) {
	if name == s.cfg.TestManifestName {
		return CategoryTestManifests, true
	}
	ext := filepath.Ext(name)
	for _, headerExt := range s.cfg.HeaderExts {
		if ext == headerExt {
			return CategoryHeaders, true
		}
	}
	for _, noteExt := range s.cfg.CoverageNoteExts {
		if ext == noteExt {
			return CategoryCoverageNotes, true
		}
	}
	return "", false
}

// copyPreservingPath creates dst's parent directories and copies src there.
func copyPreservingPath(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}
	if err := utils.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to stage %s: %w", src, err)
	}
	return nil
}

// Report renders the per-category counts for the operator.
func (s *Summary) Report() string {
	var b strings.Builder
	b.WriteString("staged artifact bundle\n")
	if s.BinaryPresent {
		b.WriteString("  binary: present\n")
	} else {
		b.WriteString("  binary: absent\n")
	}

	names := make([]string, 0, len(s.TopLevel))
	for name := range s.TopLevel {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s.TopLevel[name] {
			fmt.Fprintf(&b, "  %s: present\n", name)
		} else {
			fmt.Fprintf(&b, "  %s: absent\n", name)
		}
	}

	for _, category := range []Category{CategoryTestManifests, CategoryHeaders, CategoryCoverageNotes} {
		fmt.Fprintf(&b, "  %s: %d\n", category, s.Counts[category])
	}
	return b.String()
}
