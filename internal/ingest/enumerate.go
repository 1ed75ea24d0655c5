package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DefaultPattern selects record files by base name.
const DefaultPattern = "*.json"

// MissingDirectoryError aborts a batch before any work is attempted.
type MissingDirectoryError struct {
	Dir string
}

func (e *MissingDirectoryError) Error() string {
	return fmt.Sprintf("workflows directory not found: %s", e.Dir)
}

// Open returns a filesystem rooted at dir, or a *MissingDirectoryError when
// dir does not exist or is not a directory.
func Open(dir string) (billy.Filesystem, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingDirectoryError{Dir: dir}
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, &MissingDirectoryError{Dir: dir}
	}
	return osfs.New(dir), nil
}

// Enumerate lists the record files directly under the root of fsys whose
// names match pattern, sorted by name. Subdirectories are not descended.
func Enumerate(fsys billy.Filesystem, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	entries, err := fsys.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read workflows directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
