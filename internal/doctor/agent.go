package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/gitkeys/internal/agent"
	"github.com/rileyhilliard/gitkeys/internal/config"
	"github.com/rileyhilliard/gitkeys/internal/keystore"
	"github.com/rileyhilliard/gitkeys/internal/run"
)

// AgentCheck reports whether an ssh-agent is reachable. An absent agent is
// a warning, not a failure; keys work without one.
type AgentCheck struct {
	Bridge *agent.Bridge
}

// Name returns the check identifier.
func (c *AgentCheck) Name() string { return "agent" }

// Category returns the check category.
func (c *AgentCheck) Category() string { return "AGENT" }

// Run executes the agent reachability check.
func (c *AgentCheck) Run() CheckResult {
	loaded, err := c.Bridge.ListLoaded(context.Background())
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "ssh-agent not reachable",
			Suggestion: "Run 'gitkeys doctor --fix' or: eval \"$(ssh-agent -s)\"",
			Fixable:    true,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("ssh-agent running (%d loaded)", len(loaded)),
	}
}

// Fix starts an agent and exports its environment into this process.
func (c *AgentCheck) Fix() error {
	return c.Bridge.EnsureRunning(context.Background())
}

// NewChecks builds the full diagnostic set: required tools, agent
// reachability, and key store permissions.
func NewChecks(settings *config.Settings, runner run.Runner, bridge *agent.Bridge) []Check {
	checks := NewToolChecks(runner, settings.OS)
	checks = append(checks, &AgentCheck{Bridge: bridge})
	checks = append(checks,
		&DirPermCheck{Path: settings.KeyDir, Want: 0o700},
		&FilePermCheck{Path: settings.ConfigFile(), Want: 0o600},
		&KeysPermCheck{Store: keystore.NewStore(settings.KeyDir, nil)},
	)
	return checks
}
