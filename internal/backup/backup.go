// Package backup produces the timestamped artifacts kept under the key
// store's backups directory: full archives, text reports, and public-key
// exports. Artifacts are write-once; gitkeys never prunes or mutates them.
package backup

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

const stampFormat = "20060102-150405"

// ensureBackupDir creates the backup directory with owner-only permissions.
func ensureBackupDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create backup directory "+dir,
			"Check directory permissions")
	}
	return nil
}

// writeArtifact writes a text artifact with owner-only permissions.
func writeArtifact(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+filepath.Base(path),
			"Check disk space and permissions")
	}
	return nil
}
