package sshcfg

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/logger"
)

// Action is the outcome of an upsert.
type Action string

const (
	Added    Action = "added"
	Replaced Action = "replaced"
	Skipped  Action = "skipped"
)

const snapshotStamp = "20060102-150405"

// Editor performs read-modify-write edits on one config file, snapshotting
// the previous contents into the backup directory before each mutation.
type Editor struct {
	path      string
	backupDir string
	log       logger.Logger
	now       func() time.Time
}

// NewEditor creates an editor for the config file at path. Snapshots land
// in backupDir.
func NewEditor(path, backupDir string) *Editor {
	return &Editor{
		path:      path,
		backupDir: backupDir,
		log:       logger.NewEnvLogger("[sshcfg]"),
		now:       time.Now,
	}
}

// Path returns the config file this editor manages.
func (e *Editor) Path() string {
	return e.path
}

// Upsert writes the block into the config file. When a block for the same
// alias already exists, confirm decides whether to replace it; a nil confirm
// replaces without asking. Decline leaves the file byte-identical.
func (e *Editor) Upsert(block Block, confirm func(alias string) (bool, error)) (Action, error) {
	if block.Alias == "" || block.Hostname == "" || block.IdentityFile == "" {
		return "", errors.New(errors.ErrValidate,
			"Config block needs an alias, a hostname, and an identity file",
			"")
	}

	content, err := e.read()
	if err != nil {
		return "", err
	}
	lines := strings.Split(content, "\n")
	exists := hasBlock(lines, block.Alias)

	if exists && confirm != nil {
		replace, confirmErr := confirm(block.Alias)
		if confirmErr != nil {
			return "", errors.WrapWithCode(confirmErr, errors.ErrConfig,
				"Couldn't confirm replacing the entry for "+block.Alias, "")
		}
		if !replace {
			e.log.Debug("upsert %s skipped by user", block.Alias)
			return Skipped, nil
		}
	}

	if _, err := e.Snapshot(); err != nil {
		return "", err
	}

	if exists {
		lines, _ = removeBlockLines(lines, block.Alias)
	}
	if err := e.write(appendBlock(strings.Join(lines, "\n"), block)); err != nil {
		return "", err
	}

	if exists {
		e.log.Debug("replaced config block for %s", block.Alias)
		return Replaced, nil
	}
	e.log.Debug("added config block for %s", block.Alias)
	return Added, nil
}

// RemoveBlock deletes the managed block for alias. Returns false without
// touching the file when no such block exists.
func (e *Editor) RemoveBlock(alias string) (bool, error) {
	content, err := e.read()
	if err != nil {
		return false, err
	}
	lines := strings.Split(content, "\n")

	lines, removed := removeBlockLines(lines, alias)
	if !removed {
		return false, nil
	}

	if _, err := e.Snapshot(); err != nil {
		return false, err
	}
	if err := e.write(strings.Join(lines, "\n")); err != nil {
		return false, err
	}
	e.log.Debug("removed config block for %s", alias)
	return true, nil
}

// RemoveByIdentity deletes every block whose IdentityFile points at keyRef,
// which may be an absolute key path or a bare key name. Whole blocks are
// removed so no orphaned Host headers are left behind. Returns the aliases
// that were removed.
func (e *Editor) RemoveByIdentity(keyRef string) ([]string, error) {
	content, err := e.read()
	if err != nil {
		return nil, err
	}
	lines := strings.Split(content, "\n")

	aliases := aliasesUsingIdentity(lines, keyRef)
	if len(aliases) == 0 {
		return nil, nil
	}

	if _, err := e.Snapshot(); err != nil {
		return nil, err
	}
	for _, alias := range aliases {
		lines, _ = removeBlockLines(lines, alias)
	}
	if err := e.write(strings.Join(lines, "\n")); err != nil {
		return nil, err
	}
	e.log.Debug("removed config blocks %v for %s", aliases, keyRef)
	return aliases, nil
}

// List parses the config file and returns every concrete host entry, sorted
// by alias. Wildcard patterns are skipped.
func (e *Editor) List() ([]Block, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read "+e.path, "Check file permissions")
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't parse "+e.path,
			"Fix the syntax error or restore a snapshot from the backups directory")
	}

	var blocks []Block
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if strings.Contains(alias, "*") || strings.Contains(alias, "?") {
				continue
			}
			if seen[alias] {
				continue
			}
			seen[alias] = true

			block := Block{Alias: alias}
			if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
				block.Hostname = hostname
			}
			if user, _ := cfg.Get(alias, "User"); user != "" {
				block.User = user
			}
			if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
				block.IdentityFile = identity
			}
			blocks = append(blocks, block)
		}
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Alias < blocks[j].Alias })
	return blocks, nil
}

// Lookup returns the entry for alias.
func (e *Editor) Lookup(alias string) (*Block, error) {
	blocks, err := e.List()
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		if blocks[i].Alias == alias {
			return &blocks[i], nil
		}
	}
	return nil, errors.New(errors.ErrValidate,
		"No config entry for "+alias,
		"Run 'gitkeys list' to see configured aliases")
}

// Snapshot copies the current config file into the backup directory under a
// timestamped name. Missing config file is a successful no-op. An existing
// snapshot for the same second is left untouched.
func (e *Editor) Snapshot() (string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read "+e.path+" for backup", "Check file permissions")
	}

	if err := os.MkdirAll(e.backupDir, 0o700); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create backup directory "+e.backupDir, "Check directory permissions")
	}

	name := filepath.Join(e.backupDir, "config-"+e.now().Format(snapshotStamp))
	if _, statErr := os.Stat(name); statErr == nil {
		return name, nil
	}
	if err := os.WriteFile(name, data, 0o600); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write backup "+name, "Check disk space and permissions")
	}
	e.log.Debug("snapshotted config to %s", name)
	return name, nil
}

func (e *Editor) read() (string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read "+e.path, "Check file permissions")
	}
	return string(data), nil
}

func (e *Editor) write(content string) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create "+filepath.Dir(e.path), "Check directory permissions")
	}
	if err := os.WriteFile(e.path, []byte(content), 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+e.path, "Check disk space and permissions")
	}
	// WriteFile only applies the mode on create; reassert it for existing files.
	if err := os.Chmod(e.path, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't set permissions on "+e.path,
			"Run: chmod 600 "+e.path)
	}
	return nil
}

// appendBlock returns content with the rendered block appended, separated by
// a single blank line from whatever precedes it.
func appendBlock(content string, b Block) string {
	trimmed := strings.TrimRight(content, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return b.Render()
	}
	return trimmed + "\n\n" + b.Render()
}
