package backup

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

func seedKeyDir(t *testing.T) (string, string) {
	t.Helper()
	keyDir := t.TempDir()
	backupDir := filepath.Join(keyDir, "backups")

	require.NoError(t, os.WriteFile(filepath.Join(keyDir, "github_work"), []byte("private key material"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(keyDir, "github_work.pub"), []byte("ssh-ed25519 AAAA dev@example.com\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(keyDir, "config"), []byte("Host github.com-work\n"), 0o600))
	require.NoError(t, os.MkdirAll(backupDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "report-20240101-000000.txt"), []byte("old report"), 0o600))

	return keyDir, backupDir
}

// archiveNames reads back the tar+zstd archive and returns the entry names.
func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	zr, err := zstd.NewReader(file)
	require.NoError(t, err)
	defer zr.Close()

	tr := tar.NewReader(zr)
	var names []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, header.Name)
	}
	return names
}

func TestArchive(t *testing.T) {
	keyDir, backupDir := seedKeyDir(t)

	archiver := NewArchiver()
	archiver.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC) }

	path, err := archiver.Archive(keyDir, backupDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "gitkeys-backup-20250601-123045.tar.zst"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	names := archiveNames(t, path)
	assert.Contains(t, names, "github_work")
	assert.Contains(t, names, "github_work.pub")
	assert.Contains(t, names, "config")
	for _, name := range names {
		assert.NotContains(t, name, "backups", "earlier artifacts must not nest into new archives")
	}
}

func TestArchiveRoundTripContents(t *testing.T) {
	keyDir, backupDir := seedKeyDir(t)

	archiver := NewArchiver()
	path, err := archiver.Archive(keyDir, backupDir)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	zr, err := zstd.NewReader(file)
	require.NoError(t, err)
	defer zr.Close()

	tr := tar.NewReader(zr)
	found := false
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if header.Name == "github_work" {
			data, err := io.ReadAll(tr)
			require.NoError(t, err)
			assert.Equal(t, "private key material", string(data))
			found = true
		}
	}
	assert.True(t, found, "archive should contain the private key file")
}

func TestArchiveMissingKeyDir(t *testing.T) {
	dir := t.TempDir()

	archiver := NewArchiver()
	_, err := archiver.Archive(filepath.Join(dir, "nope"), filepath.Join(dir, "backups"))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "gitkeys create")
}

func TestArchiveCreatesBackupDir(t *testing.T) {
	keyDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(keyDir, "github_work"), []byte("key"), 0o600))
	backupDir := filepath.Join(keyDir, "backups")

	archiver := NewArchiver()
	_, err := archiver.Archive(keyDir, backupDir)
	require.NoError(t, err)

	info, err := os.Stat(backupDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}
