package writeback

import (
	"fmt"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
)

// Replace overwrites name in fsys with content. The write is atomic where the
// filesystem supports rename: content goes to a temp file in the same
// directory, which is then renamed over the target.
func Replace(fsys billy.Filesystem, name string, content []byte) error {
	tmp, err := fsys.TempFile(filepath.Dir(name), ".flowmend-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if ch, ok := fsys.(billy.Chmod); ok {
		if info, err := fsys.Stat(name); err == nil {
			_ = ch.Chmod(tmpName, info.Mode()) // best-effort permission sync
		}
	}

	if err := fsys.Rename(tmpName, name); err != nil {
		_ = fsys.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
