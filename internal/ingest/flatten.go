package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/flowmend/api"
)

// Conflict is a nested record whose base name is already taken.
type Conflict struct {
	Filename     string `json:"filename"`
	ExistingPath string `json:"existing_path"`
	NewPath      string `json:"new_path"`
}

// ConflictError aborts a flatten before anything is moved.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("flatten aborted: %d filename conflict(s)", len(e.Conflicts))
}

// FlattenResult describes a flatten that passed the conflict check.
type FlattenResult struct {
	Moved       []string
	RemovedDirs []string
	Failed      []api.Problem
}

type nested struct {
	path string
	base string
}

// Flatten moves every record below a subdirectory of fsys to the root and
// removes directories left empty. Conflicts are collected first; if there is
// any, a *ConflictError listing all of them is returned and nothing moves.
// Per-file move failures are reported in the result and do not stop the batch.
func Flatten(fsys billy.Filesystem, pattern string, logger *log.Logger) (*FlattenResult, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	files, dirs, err := scanNested(fsys, pattern)
	if err != nil {
		return nil, err
	}
	if conflicts, err := findConflicts(fsys, pattern, files); err != nil {
		return nil, err
	} else if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	res := &FlattenResult{}
	for _, f := range files {
		if err := fsys.Rename(f.path, f.base); err != nil {
			logger.Error("move failed", "file", f.path, "err", err)
			res.Failed = append(res.Failed, api.Problem{File: f.path, Reasons: []string{err.Error()}})
			continue
		}
		logger.Info("moved", "from", f.path, "to", f.base)
		res.Moved = append(res.Moved, f.path)
	}

	// Deepest first so a parent sees its children already gone.
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := depth(dirs[i]), depth(dirs[j])
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})
	for _, d := range dirs {
		entries, err := fsys.ReadDir(d)
		if err != nil {
			logger.Error("read directory failed", "dir", d, "err", err)
			continue
		}
		if len(entries) > 0 {
			continue
		}
		if err := fsys.Remove(d); err != nil {
			logger.Error("remove directory failed", "dir", d, "err", err)
			continue
		}
		logger.Debug("removed empty directory", "dir", d)
		res.RemovedDirs = append(res.RemovedDirs, d)
	}
	return res, nil
}

// scanNested walks every subdirectory of the root and returns the matching
// record files found there plus the subdirectories themselves.
func scanNested(fsys billy.Filesystem, pattern string) ([]nested, []string, error) {
	var files []nested
	var dirs []string
	err := util.Walk(fsys, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if path == "." {
			return nil
		}
		if info.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if filepath.Dir(path) == "." {
			return nil
		}
		ok, err := doublestar.Match(pattern, info.Name())
		if err != nil {
			return fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			files = append(files, nested{path: path, base: info.Name()})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return files, dirs, nil
}

func findConflicts(fsys billy.Filesystem, pattern string, files []nested) ([]Conflict, error) {
	root, err := Enumerate(fsys, pattern)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]string, len(root)+len(files))
	for _, name := range root {
		taken[name] = name
	}
	var conflicts []Conflict
	for _, f := range files {
		if existing, ok := taken[f.base]; ok {
			conflicts = append(conflicts, Conflict{Filename: f.base, ExistingPath: existing, NewPath: f.path})
			continue
		}
		taken[f.base] = f.path
	}
	return conflicts, nil
}

func depth(p string) int {
	return strings.Count(filepath.ToSlash(p), "/")
}
