package ingest

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/otiai10/copy"
)

// DefaultBackupDir is where snapshots of dir go when no backup directory is set.
func DefaultBackupDir(dir string) string {
	return filepath.Clean(dir) + "-backup"
}

// Backup copies dir into a new timestamped snapshot under backupDir and
// returns the snapshot path. Symlinks are skipped.
func Backup(dir, backupDir string, now time.Time) (string, error) {
	if backupDir == "" {
		backupDir = DefaultBackupDir(dir)
	}
	dest := filepath.Join(backupDir, fmt.Sprintf("%s-%s", filepath.Base(filepath.Clean(dir)), now.Format("20060102-150405")))
	err := copy.Copy(dir, dest, copy.Options{
		OnSymlink:     func(string) copy.SymlinkAction { return copy.Skip },
		PreserveTimes: true,
	})
	if err != nil {
		return "", fmt.Errorf("backup %s to %s: %w", dir, dest, err)
	}
	return dest, nil
}
