// Package persist owns the filesystem and git side effects of a run: backup
// naming, output writing with rollback, and commit/push. The resolution and
// rewrite pipeline hands it bytes and paths and gets back success or
// failure; nothing here inspects playlist content.
package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backup moves the file at path aside to the first free "{name}.bakN" name
// (N counting from 1) and returns the backup path. An existing backup is
// never overwritten. If path does not exist there is nothing to back up and
// Backup returns "".
func Backup(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	for i := 1; ; i++ {
		bak := fmt.Sprintf("%s.bak%d", path, i)
		if _, err := os.Stat(bak); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat %s: %w", bak, err)
		}
		if err := os.Rename(path, bak); err != nil {
			return "", fmt.Errorf("failed to create backup %s: %w", bak, err)
		}
		return bak, nil
	}
}

// Restore moves a backup taken by Backup back to its original name. Used as
// best-effort rollback when the output write fails.
func Restore(bak, path string) error {
	if err := os.Rename(bak, path); err != nil {
		return fmt.Errorf("failed to restore backup %s: %w", bak, err)
	}
	return nil
}

// WriteOutput writes data to path, creating the parent directory if needed.
func WriteOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
