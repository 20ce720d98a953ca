// Package artifacts collects the built files that belong to a release and
// checksums them.
package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/shipyard/pkg/api"
)

// Artifact is one release file.
type Artifact struct {
	Name   string // path relative to the artifact directory, slash separated
	Path   string // absolute path on disk
	Size   int64
	SHA256 string
}

// Collect resolves cfg against baseDir and returns the matching files sorted
// by name. A config with no directory and no patterns yields no artifacts.
func Collect(cfg api.ArtifactConfig, baseDir string) ([]Artifact, error) {
	if cfg.Dir == "" && len(cfg.Include) == 0 {
		return nil, nil
	}

	dir := cfg.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(baseDir, dir)
	}

	names, err := selectFiles(os.DirFS(dir), cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("selecting artifacts in %s: %w", dir, err)
	}

	result := make([]Artifact, 0, len(names))
	for _, name := range names {
		a, err := checksum(dir, name)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// Find returns the first artifact whose name matches pattern.
func Find(list []Artifact, pattern string) (Artifact, bool) {
	for _, a := range list {
		if ok, _ := doublestar.Match(pattern, a.Name); ok {
			return a, true
		}
		if ok, _ := doublestar.Match(pattern, path.Base(a.Name)); ok {
			return a, true
		}
	}
	return Artifact{}, false
}

// selectFiles globs the include patterns over regular files and drops any
// name an exclude pattern matches. Excludes are checked against both the
// relative name and its base name, the same way Find resolves patterns.
func selectFiles(fsys fs.FS, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{api.DefaultInclude}
	}
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("exclude %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	var names []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		for _, name := range matches {
			if !excluded(name, exclude) {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func excluded(name string, exclude []string) bool {
	for _, pattern := range exclude {
		if doublestar.MatchUnvalidated(pattern, name) || doublestar.MatchUnvalidated(pattern, path.Base(name)) {
			return true
		}
	}
	return false
}

func checksum(dir, name string) (Artifact, error) {
	p := filepath.Join(dir, filepath.FromSlash(name))

	f, err := os.Open(p)
	if err != nil {
		return Artifact{}, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Artifact{}, fmt.Errorf("hashing %s: %w", name, err)
	}

	return Artifact{
		Name:   name,
		Path:   p,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
