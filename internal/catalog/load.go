package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches catalog content packs inside a directory tree.
const DefaultPattern = "**/*.yaml"

// Pack is a catalog loaded from a file.
type Pack struct {
	Path    string
	Catalog *Catalog
}

// LoadDir parses every file under dir matching pattern. Packs are returned
// sorted by path. Any invalid pack fails the whole load.
func LoadDir(dir, pattern string) ([]Pack, error) {
	return LoadFS(os.DirFS(dir), pattern)
}

// LoadFS is LoadDir over an arbitrary filesystem.
func LoadFS(fsys fs.FS, pattern string) ([]Pack, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid catalog pattern: %q", pattern)
	}

	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	packs := make([]Pack, 0, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", m, err)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Clean(m), err)
		}
		packs = append(packs, Pack{Path: m, Catalog: c})
	}
	return packs, nil
}

// Resolve returns the first pack under dir, or the built-in catalog when
// dir is empty.
func Resolve(dir, pattern string) (*Catalog, error) {
	if dir == "" {
		return Default(), nil
	}
	packs, err := LoadDir(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(packs) == 0 {
		return nil, fmt.Errorf("no catalog found in %s matching %q", dir, pattern)
	}
	return packs[0].Catalog, nil
}
