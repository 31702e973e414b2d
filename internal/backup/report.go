package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/gitkeys/internal/agent"
	"github.com/rileyhilliard/gitkeys/internal/keygen"
	"github.com/rileyhilliard/gitkeys/internal/keystore"
	"github.com/rileyhilliard/gitkeys/internal/logger"
	"github.com/rileyhilliard/gitkeys/pkg/keyinfo"
)

// Scanner lists the keys to report on. *keystore.Store satisfies it.
type Scanner interface {
	Scan(ctx context.Context) ([]keystore.Entry, error)
}

// Fingerprinter inspects one key file. *keygen.Tool satisfies it.
type Fingerprinter interface {
	Inspect(ctx context.Context, path string) (keygen.Details, error)
}

// AgentLister reports the identities held by the ssh-agent. *agent.Bridge
// satisfies it.
type AgentLister interface {
	ListLoaded(ctx context.Context) ([]agent.LoadedKey, error)
}

// Reporter builds the text artifacts: the full report and the public-key
// export. Both are written under the backups directory and returned so the
// caller can echo them.
type Reporter struct {
	scanner    Scanner
	fp         Fingerprinter
	agent      AgentLister
	configPath string
	backupDir  string
	log        logger.Logger
	now        func() time.Time
}

// NewReporter creates a reporter over the given collaborators.
func NewReporter(scanner Scanner, fp Fingerprinter, agentList AgentLister, configPath, backupDir string) *Reporter {
	return &Reporter{
		scanner:    scanner,
		fp:         fp,
		agent:      agentList,
		configPath: configPath,
		backupDir:  backupDir,
		log:        logger.NewEnvLogger("[backup]"),
		now:        time.Now,
	}
}

// Report combines per-key fingerprints, the managed config contents, and
// the agent's loaded identities into one snapshot. Unreachable collaborators
// degrade their section; they never fail the report.
func (r *Reporter) Report(ctx context.Context) (string, string, error) {
	entries, err := r.scanner.Scan(ctx)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "gitkeys report\ngenerated: %s\n", r.now().Format("2006-01-02 15:04:05"))

	b.WriteString("\n== keys ==\n")
	if len(entries) == 0 {
		b.WriteString("none\n")
	}
	for _, entry := range entries {
		fmt.Fprintf(&b, "%s\n", entry.Name)
		details, inspectErr := r.fp.Inspect(ctx, entry.PrivatePath)
		if inspectErr == nil {
			fmt.Fprintf(&b, "  %d %s %s (%s)\n",
				details.Bits, details.Fingerprint, details.Comment, details.Algorithm)
			continue
		}
		// ssh-keygen may be missing or refuse the file; the public key
		// still carries enough to fingerprint in-process
		key, parseErr := keyinfo.ParseFile(entry.PublicPath)
		if parseErr != nil {
			fmt.Fprintf(&b, "  fingerprint unavailable: %v\n", inspectErr)
			continue
		}
		fmt.Fprintf(&b, "  %d %s %s (%s)\n",
			key.Bits, key.Fingerprint, key.Comment, key.Algorithm)
	}

	fmt.Fprintf(&b, "\n== ssh config (%s) ==\n", r.configPath)
	b.WriteString(r.configSection())

	b.WriteString("\n== agent identities ==\n")
	loaded, agentErr := r.agent.ListLoaded(ctx)
	switch {
	case agentErr != nil:
		fmt.Fprintf(&b, "agent unavailable: %v\n", agentErr)
	case len(loaded) == 0:
		b.WriteString("none loaded\n")
	default:
		for _, key := range loaded {
			fmt.Fprintf(&b, "%d %s %s (%s)\n", key.Bits, key.Fingerprint, key.Comment, key.Algorithm)
		}
	}

	return r.writeTimestamped("report", b.String())
}

// Export collects the managed config plus every public key into one text
// file for manual transfer to another machine.
func (r *Reporter) Export(ctx context.Context) (string, string, error) {
	entries, err := r.scanner.Scan(ctx)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "gitkeys export\ngenerated: %s\n", r.now().Format("2006-01-02 15:04:05"))

	b.WriteString("\n== ssh config ==\n")
	b.WriteString(r.configSection())

	b.WriteString("\n== public keys ==\n")
	if len(entries) == 0 {
		b.WriteString("none\n")
	}
	for _, entry := range entries {
		fmt.Fprintf(&b, "-- %s.pub --\n", entry.Name)
		data, readErr := os.ReadFile(entry.PublicPath)
		if readErr != nil {
			fmt.Fprintf(&b, "unreadable: %v\n", readErr)
			continue
		}
		b.WriteString(strings.TrimRight(string(data), "\n") + "\n")
	}

	return r.writeTimestamped("export", b.String())
}

func (r *Reporter) configSection() string {
	data, err := os.ReadFile(r.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "no config file yet\n"
		}
		return fmt.Sprintf("unreadable: %v\n", err)
	}
	if len(data) == 0 {
		return "empty\n"
	}
	return strings.TrimRight(string(data), "\n") + "\n"
}

func (r *Reporter) writeTimestamped(kind, content string) (string, string, error) {
	if err := ensureBackupDir(r.backupDir); err != nil {
		return "", "", err
	}
	path := filepath.Join(r.backupDir, kind+"-"+r.now().Format(stampFormat)+".txt")
	if err := writeArtifact(path, content); err != nil {
		return "", "", err
	}
	r.log.Debug("wrote %s", path)
	return path, content, nil
}
