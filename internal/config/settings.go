// Package config defines the runtime settings for gitkeys and loads them
// from the user's config file, environment, and flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

// Settings holds every runtime knob. It is constructed once at process start
// and passed into components rather than read from package globals.
type Settings struct {
	// KeyDir is the key-store root. Key pairs, the managed SSH config file,
	// and backup artifacts all live under it.
	KeyDir string `yaml:"key_dir" mapstructure:"key_dir"`

	// ProbeTimeout bounds each connection probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`

	// DefaultKeyType is used when no --type flag is given: ed25519 or rsa.
	DefaultKeyType string `yaml:"default_key_type" mapstructure:"default_key_type"`

	// UseKeychain enables the macOS keychain flag when registering keys
	// with the agent. Ignored on other systems.
	UseKeychain bool `yaml:"use_keychain" mapstructure:"use_keychain"`

	// OS is the operating system gitkeys is running on, captured once so
	// platform-specific behavior stays explicit and testable.
	OS string `yaml:"-" mapstructure:"-"`
}

// Default returns settings with sensible defaults for this machine.
func Default() *Settings {
	home, _ := os.UserHomeDir()
	return &Settings{
		KeyDir:         filepath.Join(home, ".ssh", "gitkeys"),
		ProbeTimeout:   15 * time.Second,
		DefaultKeyType: "ed25519",
		UseKeychain:    runtime.GOOS == "darwin",
		OS:             runtime.GOOS,
	}
}

// ConfigFile returns the path of the managed host-alias config file.
func (s *Settings) ConfigFile() string {
	return filepath.Join(s.KeyDir, "config")
}

// KnownHostsFile returns the path of the known-hosts file inside the key store.
func (s *Settings) KnownHostsFile() string {
	return filepath.Join(s.KeyDir, "known_hosts")
}

// BackupDir returns the directory for timestamped backup artifacts.
func (s *Settings) BackupDir() string {
	return filepath.Join(s.KeyDir, "backups")
}

// KeyPath returns the private key path for a key name inside the store.
func (s *Settings) KeyPath(name string) string {
	return filepath.Join(s.KeyDir, name)
}

// EnsureLayout creates the key directory and backup directory with
// owner-only permissions.
func (s *Settings) EnsureLayout() error {
	if err := os.MkdirAll(s.KeyDir, 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create key directory "+s.KeyDir,
			"Check permissions on the parent directory")
	}
	if err := os.MkdirAll(s.BackupDir(), 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create backup directory "+s.BackupDir(),
			"Check permissions on "+s.KeyDir)
	}
	return nil
}
