// Package agent talks to the user's ssh-agent through the ssh-add and
// ssh-agent tools. Registration failures are surfaced as AGENT errors that
// callers report as warnings; a key is usable without the agent.
package agent

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/logger"
	"github.com/rileyhilliard/gitkeys/internal/run"
)

// LoadedKey is one identity reported by ssh-add -l.
type LoadedKey struct {
	Bits        int
	Fingerprint string
	Comment     string
	Algorithm   string
}

// Bridge wraps the external agent tools.
type Bridge struct {
	runner      run.Runner
	useKeychain bool
	log         logger.Logger
}

// NewBridge creates a bridge. When useKeychain is set, Add first tries the
// macOS keychain-integrated mode before falling back to a plain ssh-add.
func NewBridge(runner run.Runner, useKeychain bool) *Bridge {
	return &Bridge{
		runner:      runner,
		useKeychain: useKeychain,
		log:         logger.NewEnvLogger("[agent]"),
	}
}

// EnsureRunning checks that an agent is reachable and starts one when it is
// not. A started agent's socket and pid are exported into this process's
// environment so every later tool invocation inherits them.
func (b *Bridge) EnsureRunning(ctx context.Context) error {
	res, err := b.runner.Run(ctx, "ssh-add", "-l")
	if err != nil {
		return err
	}
	// Exit 1 means "no identities", which still proves the agent is up.
	if res.ExitCode == 0 || res.ExitCode == 1 {
		return nil
	}

	b.log.Debug("no reachable agent (ssh-add exit %d), starting one", res.ExitCode)
	res, err = b.runner.Run(ctx, "ssh-agent", "-s")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.New(errors.ErrAgent,
			"Couldn't start ssh-agent: "+strings.TrimSpace(string(res.Output)),
			"Start it manually: eval \"$(ssh-agent -s)\"")
	}

	sock, pid := parseAgentEnv(res.Output)
	if sock == "" {
		return errors.New(errors.ErrAgent,
			"ssh-agent started but didn't report its socket",
			"Start it manually: eval \"$(ssh-agent -s)\"")
	}
	os.Setenv("SSH_AUTH_SOCK", sock)
	if pid != "" {
		os.Setenv("SSH_AGENT_PID", pid)
	}
	b.log.Debug("started ssh-agent, socket %s pid %s", sock, pid)
	return nil
}

// Add registers a private key with the agent.
func (b *Bridge) Add(ctx context.Context, keyPath string) error {
	if b.useKeychain {
		res, err := b.runner.Run(ctx, "ssh-add", "--apple-use-keychain", keyPath)
		if err == nil && res.ExitCode == 0 {
			return nil
		}
		b.log.Debug("keychain add failed, retrying without keychain")
	}

	res, err := b.runner.Run(ctx, "ssh-add", keyPath)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		msg := "Couldn't add the key to the ssh-agent"
		if out := strings.TrimSpace(string(res.Output)); out != "" {
			msg += ": " + out
		}
		return errors.New(errors.ErrAgent, msg, "Add it manually: ssh-add "+keyPath)
	}
	return nil
}

// Remove unregisters a private key from the agent.
func (b *Bridge) Remove(ctx context.Context, keyPath string) error {
	res, err := b.runner.Run(ctx, "ssh-add", "-d", keyPath)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		msg := "Couldn't remove the key from the ssh-agent"
		if out := strings.TrimSpace(string(res.Output)); out != "" {
			msg += ": " + out
		}
		return errors.New(errors.ErrAgent, msg, "Remove it manually: ssh-add -d "+keyPath)
	}
	return nil
}

// ListLoaded returns the identities currently held by the agent. An agent
// with no identities yields an empty list, not an error.
func (b *Bridge) ListLoaded(ctx context.Context) ([]LoadedKey, error) {
	res, err := b.runner.Run(ctx, "ssh-add", "-l")
	if err != nil {
		return nil, err
	}
	switch res.ExitCode {
	case 0:
		return parseLoadedKeys(res.Output), nil
	case 1:
		return nil, nil
	default:
		return nil, errors.New(errors.ErrAgent,
			"Couldn't reach the ssh-agent",
			"Start it with: eval \"$(ssh-agent -s)\"")
	}
}

// parseAgentEnv extracts SSH_AUTH_SOCK and SSH_AGENT_PID from the bourne
// shell export lines ssh-agent -s prints.
func parseAgentEnv(output []byte) (sock, pid string) {
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "SSH_AUTH_SOCK":
			sock = value
		case "SSH_AGENT_PID":
			pid = value
		}
	}
	return sock, pid
}

// parseLoadedKeys parses ssh-add -l rows of the form
// "256 SHA256:abc... comment (ED25519)".
func parseLoadedKeys(output []byte) []LoadedKey {
	var keys []LoadedKey
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		key := LoadedKey{
			Fingerprint: fields[1],
			Comment:     strings.Join(fields[2:len(fields)-1], " "),
			Algorithm:   strings.Trim(fields[len(fields)-1], "()"),
		}
		if bits, err := strconv.Atoi(fields[0]); err == nil {
			key.Bits = bits
		}
		keys = append(keys, key)
	}
	return keys
}
