// Package control guards a workflows directory against concurrent runs.
package control

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned when another process holds the run lock.
var ErrLocked = errors.New("workflows directory is locked by another run")

// Lock is an advisory exclusive flock held for the duration of a run.
type Lock struct {
	path string
	file *os.File
}

// LockPath returns the lock file used for dir. It lives beside dir, not in
// it, so record enumeration and backups never see it.
func LockPath(dir string) string {
	clean := filepath.Clean(dir)
	return filepath.Join(filepath.Dir(clean), "."+filepath.Base(clean)+".lock")
}

// Acquire takes the run lock for dir without blocking.
func Acquire(dir string) (*Lock, error) {
	path := LockPath(dir)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	// Owner pid for humans inspecting a stuck lock.
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{path: path, file: f}, nil
}

func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() error {
	_ = os.Remove(l.path)
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return fmt.Errorf("unlock: %w", err)
	}
	return l.file.Close()
}
