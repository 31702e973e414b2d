// Package keygen generates and inspects SSH key pairs by driving ssh-keygen.
// Key material is never produced in-process.
package keygen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/logger"
	"github.com/rileyhilliard/gitkeys/internal/run"
)

// Request describes one key pair to generate.
type Request struct {
	// Dir is the key-store directory the pair is written into.
	Dir string

	// KeyName is the private key file name, e.g. "github_work".
	KeyName string

	// Type is ed25519 (default) or rsa.
	Type string

	// Comment becomes the key comment; defaults to KeyName.
	Comment string

	// Force replaces existing files instead of failing.
	Force bool
}

// Pair is a generated key pair on disk.
type Pair struct {
	Name        string
	PrivatePath string
	PublicPath  string
	Type        string
}

// Tool drives ssh-keygen through a Runner.
type Tool struct {
	runner run.Runner
	log    logger.Logger
}

// NewTool creates a key generation tool.
func NewTool(runner run.Runner) *Tool {
	return &Tool{runner: runner, log: logger.NewEnvLogger("[keygen]")}
}

// Generate creates a key pair with an empty passphrase. The empty passphrase
// keeps generated keys usable in scripted Git workflows without prompting;
// it is a deliberate, documented trade-off. Existing files fail with an
// EXISTS error and no filesystem changes unless req.Force is set.
func (t *Tool) Generate(ctx context.Context, req Request) (*Pair, error) {
	keyType := req.Type
	if keyType == "" {
		keyType = "ed25519"
	}
	if keyType != "ed25519" && keyType != "rsa" {
		return nil, errors.New(errors.ErrValidate,
			"Invalid key type: "+keyType,
			"Supported types: ed25519 (recommended), rsa")
	}

	private := filepath.Join(req.Dir, req.KeyName)
	public := private + ".pub"

	if fileExists(private) || fileExists(public) {
		if !req.Force {
			return nil, errors.New(errors.ErrExists,
				"Key "+req.KeyName+" already exists",
				"Re-run with --force to replace it")
		}
		// ssh-keygen prompts before overwriting; clear the old pair so the
		// run stays non-interactive.
		os.Remove(private)
		os.Remove(public)
	}

	if err := os.MkdirAll(req.Dir, 0700); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create key directory "+req.Dir,
			"Check permissions on the parent directory")
	}

	comment := req.Comment
	if comment == "" {
		comment = req.KeyName
	}

	args := []string{"-t", keyType, "-f", private, "-N", "", "-C", comment}
	if keyType == "rsa" {
		args = append(args, "-b", "4096")
	}

	t.log.Debug("generating %s key %s", keyType, req.KeyName)
	result, err := t.runner.Run(ctx, "ssh-keygen", args...)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, errors.New(errors.ErrKeygen,
			fmt.Sprintf("ssh-keygen failed: %s", strings.TrimSpace(string(result.Output))),
			"Check the output above and try again")
	}

	// Verify the pair was actually written
	if !fileExists(private) || !fileExists(public) {
		return nil, errors.New(errors.ErrKeygen,
			"Key generation completed but key files not found",
			"Check disk space and permissions")
	}

	if err := setPermissions(req.Dir, private, public); err != nil {
		return nil, err
	}

	return &Pair{
		Name:        req.KeyName,
		PrivatePath: private,
		PublicPath:  public,
		Type:        keyType,
	}, nil
}

// setPermissions applies the store's permission policy: 600 private,
// 644 public, 700 directory.
func setPermissions(dir, private, public string) error {
	if err := os.Chmod(private, 0600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't restrict permissions on "+private,
			"Run: chmod 600 "+private)
	}
	if err := os.Chmod(public, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't set permissions on "+public,
			"Run: chmod 644 "+public)
	}
	if err := os.Chmod(dir, 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't restrict permissions on "+dir,
			"Run: chmod 700 "+dir)
	}
	return nil
}

// ReadPublicKey reads a public key file, trimmed for display.
func ReadPublicKey(pubPath string) (string, error) {
	data, err := os.ReadFile(pubPath)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read public key: "+pubPath,
			"Check that the file exists and is readable")
	}
	return strings.TrimSpace(string(data)), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
