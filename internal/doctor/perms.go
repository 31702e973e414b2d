package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/keystore"
)

// DirPermCheck verifies a directory carries owner-only permissions.
type DirPermCheck struct {
	Path string
	Want os.FileMode
}

// Name returns the check identifier.
func (c *DirPermCheck) Name() string { return "perms_" + filepath.Base(c.Path) }

// Category returns the check category.
func (c *DirPermCheck) Category() string { return "PERMISSIONS" }

// Run executes the permission check.
func (c *DirPermCheck) Run() CheckResult {
	info, err := os.Stat(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    "no key directory yet",
				Suggestion: "Run 'gitkeys create' to set one up",
			}
		}
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("couldn't stat %s: %v", c.Path, err),
		}
	}

	if mode := info.Mode().Perm(); mode != c.Want {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s has mode %04o, want %04o", c.Path, mode, c.Want),
			Suggestion: fmt.Sprintf("Run 'gitkeys doctor --fix' or: chmod %o %s", c.Want, c.Path),
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s is owner-only", c.Path),
	}
}

// Fix restores the wanted mode.
func (c *DirPermCheck) Fix() error {
	if _, err := os.Stat(c.Path); os.IsNotExist(err) {
		return nil
	}
	return os.Chmod(c.Path, c.Want)
}

// FilePermCheck verifies a file's permissions. A missing file passes; it
// simply has not been created yet.
type FilePermCheck struct {
	Path string
	Want os.FileMode
}

// Name returns the check identifier.
func (c *FilePermCheck) Name() string { return "perms_" + filepath.Base(c.Path) }

// Category returns the check category.
func (c *FilePermCheck) Category() string { return "PERMISSIONS" }

// Run executes the permission check.
func (c *FilePermCheck) Run() CheckResult {
	info, err := os.Stat(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:    c.Name(),
				Status:  StatusPass,
				Message: filepath.Base(c.Path) + " not created yet",
			}
		}
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("couldn't stat %s: %v", c.Path, err),
		}
	}

	if mode := info.Mode().Perm(); mode != c.Want {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s has mode %04o, want %04o", c.Path, mode, c.Want),
			Suggestion: fmt.Sprintf("Run 'gitkeys doctor --fix' or: chmod %o %s", c.Want, c.Path),
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s is owner-only", c.Path),
	}
}

// Fix restores the wanted mode.
func (c *FilePermCheck) Fix() error {
	if _, err := os.Stat(c.Path); os.IsNotExist(err) {
		return nil
	}
	return os.Chmod(c.Path, c.Want)
}

// KeysPermCheck verifies every private key in the store is mode 0600. The
// ssh client refuses keys readable by others, so loose modes break auth.
type KeysPermCheck struct {
	Store *keystore.Store
}

// Name returns the check identifier.
func (c *KeysPermCheck) Name() string { return "perms_keys" }

// Category returns the check category.
func (c *KeysPermCheck) Category() string { return "PERMISSIONS" }

// Run executes the permission check.
func (c *KeysPermCheck) Run() CheckResult {
	entries, err := c.Store.Scan(context.Background())
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("couldn't scan key directory: %v", err),
		}
	}
	if len(entries) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "no keys yet",
		}
	}

	loose := c.looseKeys(entries)
	if len(loose) > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%d private key%s with loose permissions", len(loose), pluralize(len(loose))),
			Suggestion: "Run 'gitkeys doctor --fix' or: chmod 600 " + strings.Join(loose, " "),
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d private key%s locked to owner", len(entries), pluralize(len(entries))),
	}
}

// Fix chmods every loose private key back to 0600.
func (c *KeysPermCheck) Fix() error {
	entries, err := c.Store.Scan(context.Background())
	if err != nil {
		return err
	}
	for _, path := range c.looseKeys(entries) {
		if err := os.Chmod(path, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func (c *KeysPermCheck) looseKeys(entries []keystore.Entry) []string {
	var loose []string
	for _, entry := range entries {
		info, err := os.Stat(entry.PrivatePath)
		if err != nil {
			continue
		}
		if info.Mode().Perm() != 0o600 {
			loose = append(loose, entry.PrivatePath)
		}
	}
	return loose
}
