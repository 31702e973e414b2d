package backup

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/logger"
)

// Archiver packages the whole key store into compressed archives.
type Archiver struct {
	log logger.Logger
	now func() time.Time
}

// NewArchiver creates an archiver.
func NewArchiver() *Archiver {
	return &Archiver{
		log: logger.NewEnvLogger("[backup]"),
		now: time.Now,
	}
}

// Archive writes a tar+zstd archive of keyDir into backupDir and returns the
// artifact path. The backups directory itself is excluded so archives never
// nest earlier archives.
func (a *Archiver) Archive(keyDir, backupDir string) (string, error) {
	if _, err := os.Stat(keyDir); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"No key directory at "+keyDir,
			"Run 'gitkeys create' to set one up first")
	}
	if err := ensureBackupDir(backupDir); err != nil {
		return "", err
	}

	name := "gitkeys-backup-" + a.now().Format(stampFormat) + ".tar.zst"
	path := filepath.Join(backupDir, name)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create "+path, "Check disk space and permissions")
	}
	defer file.Close()

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't start the archive compressor", "")
	}
	tw := tar.NewWriter(zw)

	walkErr := filepath.WalkDir(keyDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filepath.Clean(p) == filepath.Clean(backupDir) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return a.addFile(tw, keyDir, p)
	})

	if closeErr := tw.Close(); walkErr == nil {
		walkErr = closeErr
	}
	if closeErr := zw.Close(); walkErr == nil {
		walkErr = closeErr
	}
	if walkErr != nil {
		os.Remove(path)
		return "", errors.WrapWithCode(walkErr, errors.ErrConfig,
			"Couldn't write backup archive "+path,
			"Check disk space and permissions")
	}

	a.log.Debug("archived %s to %s", keyDir, path)
	return path, nil
}

func (a *Archiver) addFile(tw *tar.Writer, root, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(tw, file)
	return err
}
