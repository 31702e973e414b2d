package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gitkeys/internal/agent"
	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/keygen"
	"github.com/rileyhilliard/gitkeys/internal/keystore"
)

type stubScanner struct {
	entries []keystore.Entry
	err     error
}

func (s *stubScanner) Scan(context.Context) ([]keystore.Entry, error) {
	return s.entries, s.err
}

type stubFingerprinter struct {
	details map[string]keygen.Details
	err     error
}

func (s *stubFingerprinter) Inspect(_ context.Context, path string) (keygen.Details, error) {
	if s.err != nil {
		return keygen.Details{}, s.err
	}
	return s.details[filepath.Base(path)], nil
}

type stubAgentLister struct {
	keys []agent.LoadedKey
	err  error
}

func (s *stubAgentLister) ListLoaded(context.Context) ([]agent.LoadedKey, error) {
	return s.keys, s.err
}

func newTestReporter(t *testing.T, scanner *stubScanner, fp *stubFingerprinter, lister *stubAgentLister) (*Reporter, string, string) {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config")
	backupDir := filepath.Join(dir, "backups")

	reporter := NewReporter(scanner, fp, lister, configPath, backupDir)
	reporter.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC) }
	return reporter, configPath, backupDir
}

func TestReport(t *testing.T) {
	scanner := &stubScanner{entries: []keystore.Entry{
		{Name: "github_work", PrivatePath: "/keys/github_work"},
		{Name: "gitlab_ci", PrivatePath: "/keys/gitlab_ci"},
	}}
	fp := &stubFingerprinter{details: map[string]keygen.Details{
		"github_work": {Bits: 256, Fingerprint: "SHA256:abc", Comment: "dev@example.com", Algorithm: "ED25519"},
		"gitlab_ci":   {Bits: 4096, Fingerprint: "SHA256:def", Comment: "ci", Algorithm: "RSA"},
	}}
	lister := &stubAgentLister{keys: []agent.LoadedKey{
		{Bits: 256, Fingerprint: "SHA256:abc", Comment: "dev@example.com", Algorithm: "ED25519"},
	}}

	reporter, configPath, backupDir := newTestReporter(t, scanner, fp, lister)
	require.NoError(t, os.WriteFile(configPath, []byte("Host github.com-work\n    HostName github.com\n"), 0o600))

	path, content, err := reporter.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(backupDir, "report-20250601-123045.txt"), path)
	assert.Contains(t, content, "== keys ==")
	assert.Contains(t, content, "github_work")
	assert.Contains(t, content, "256 SHA256:abc dev@example.com (ED25519)")
	assert.Contains(t, content, "4096 SHA256:def ci (RSA)")
	assert.Contains(t, content, "Host github.com-work")
	assert.Contains(t, content, "== agent identities ==")

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(written))
}

func TestReportInspectionFailureFallsBackToPublicKey(t *testing.T) {
	dir := t.TempDir()
	pubPath := filepath.Join(dir, "github_work.pub")
	pubLine := "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA dev@example.com\n"
	require.NoError(t, os.WriteFile(pubPath, []byte(pubLine), 0o644))

	scanner := &stubScanner{entries: []keystore.Entry{
		{Name: "github_work", PrivatePath: "/keys/github_work", PublicPath: pubPath},
	}}
	fp := &stubFingerprinter{err: errors.New(errors.ErrKeygen, "ssh-keygen failed", "")}

	reporter, _, _ := newTestReporter(t, scanner, fp, &stubAgentLister{})

	_, content, err := reporter.Report(context.Background())
	require.NoError(t, err)
	assert.Contains(t, content, "256 SHA256:")
	assert.Contains(t, content, "dev@example.com (ED25519)")
	assert.NotContains(t, content, "fingerprint unavailable")
}

func TestReportInspectionFailureDegrades(t *testing.T) {
	scanner := &stubScanner{entries: []keystore.Entry{{Name: "github_work", PrivatePath: "/keys/github_work"}}}
	fp := &stubFingerprinter{err: errors.New(errors.ErrKeygen, "ssh-keygen failed", "")}
	lister := &stubAgentLister{}

	reporter, _, _ := newTestReporter(t, scanner, fp, lister)

	_, content, err := reporter.Report(context.Background())
	require.NoError(t, err)
	assert.Contains(t, content, "fingerprint unavailable")
}

func TestReportAgentUnavailable(t *testing.T) {
	scanner := &stubScanner{}
	fp := &stubFingerprinter{}
	lister := &stubAgentLister{err: errors.New(errors.ErrAgent, "Couldn't reach the ssh-agent", "")}

	reporter, _, _ := newTestReporter(t, scanner, fp, lister)

	_, content, err := reporter.Report(context.Background())
	require.NoError(t, err)
	assert.Contains(t, content, "agent unavailable")
}

func TestReportEmptyStore(t *testing.T) {
	reporter, _, _ := newTestReporter(t, &stubScanner{}, &stubFingerprinter{}, &stubAgentLister{})

	_, content, err := reporter.Report(context.Background())
	require.NoError(t, err)
	assert.Contains(t, content, "none\n")
	assert.Contains(t, content, "no config file yet")
	assert.Contains(t, content, "none loaded")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	pubPath := filepath.Join(dir, "github_work.pub")
	require.NoError(t, os.WriteFile(pubPath, []byte("ssh-ed25519 AAAA dev@example.com\n"), 0o644))

	scanner := &stubScanner{entries: []keystore.Entry{
		{Name: "github_work", PublicPath: pubPath},
	}}
	reporter, configPath, backupDir := newTestReporter(t, scanner, &stubFingerprinter{}, &stubAgentLister{})
	require.NoError(t, os.WriteFile(configPath, []byte("Host github.com-work\n"), 0o600))

	path, content, err := reporter.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(backupDir, "export-20250601-123045.txt"), path)
	assert.Contains(t, content, "== ssh config ==")
	assert.Contains(t, content, "Host github.com-work")
	assert.Contains(t, content, "-- github_work.pub --")
	assert.Contains(t, content, "ssh-ed25519 AAAA dev@example.com")
}

func TestExportUnreadablePublicKey(t *testing.T) {
	scanner := &stubScanner{entries: []keystore.Entry{
		{Name: "github_work", PublicPath: "/nonexistent/github_work.pub"},
	}}
	reporter, _, _ := newTestReporter(t, scanner, &stubFingerprinter{}, &stubAgentLister{})

	_, content, err := reporter.Export(context.Background())
	require.NoError(t, err)
	assert.Contains(t, content, "unreadable")
}

func TestReportScannerFailurePropagates(t *testing.T) {
	scanner := &stubScanner{err: errors.New(errors.ErrConfig, "Couldn't read key directory", "")}
	reporter, _, _ := newTestReporter(t, scanner, &stubFingerprinter{}, &stubAgentLister{})

	_, _, err := reporter.Report(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
