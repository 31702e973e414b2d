package doctor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/run"
)

// RequiredTools are the external programs every key workflow depends on.
var RequiredTools = []string{"ssh-keygen", "ssh", "ssh-add"}

// ToolCheck verifies one external tool is on PATH.
type ToolCheck struct {
	Tool   string
	OS     string
	Runner run.Runner
}

// Name returns the check identifier.
func (c *ToolCheck) Name() string { return "tool_" + c.Tool }

// Category returns the check category.
func (c *ToolCheck) Category() string { return "TOOLS" }

// Run executes the tool lookup.
func (c *ToolCheck) Run() CheckResult {
	if _, err := c.Runner.LookPath(c.Tool); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    c.Tool + " not found on PATH",
			Suggestion: installHint(c.OS),
		}
	}

	// Only the ssh client reports a version without side effects.
	if c.Tool == "ssh" {
		if version := c.sshVersion(); version != "" {
			return CheckResult{
				Name:    c.Name(),
				Status:  StatusPass,
				Message: fmt.Sprintf("ssh %s found", version),
			}
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: c.Tool + " found",
	}
}

// Fix cannot install system packages.
func (c *ToolCheck) Fix() error { return nil }

func (c *ToolCheck) sshVersion() string {
	res, err := c.Runner.Run(context.Background(), "ssh", "-V")
	if err != nil {
		return ""
	}
	return parseOpenSSHVersion(string(res.Output))
}

// parseOpenSSHVersion extracts the version from ssh -V output, e.g.
// "OpenSSH_9.7p1 Ubuntu-3ubuntu13, OpenSSL 3.0.13" -> "9.7p1".
func parseOpenSSHVersion(output string) string {
	re := regexp.MustCompile(`OpenSSH_([0-9][\w.]*)`)
	matches := re.FindStringSubmatch(output)
	if len(matches) >= 2 {
		return strings.TrimRight(matches[1], ",")
	}
	return ""
}

// installHint returns the per-OS instruction for getting the OpenSSH tools.
func installHint(osName string) string {
	switch osName {
	case "darwin":
		return "Install the OpenSSH tools: brew install openssh"
	case "windows":
		return "Install the OpenSSH client: Add-WindowsCapability -Online -Name OpenSSH.Client~~~~0.0.1.0"
	default:
		return "Install the OpenSSH client: apt install openssh-client (or your distro's equivalent)"
	}
}

// NewToolChecks creates a check per required tool.
func NewToolChecks(runner run.Runner, osName string) []Check {
	checks := make([]Check, 0, len(RequiredTools))
	for _, tool := range RequiredTools {
		checks = append(checks, &ToolCheck{Tool: tool, OS: osName, Runner: runner})
	}
	return checks
}

// RequireTools aborts with a DEPS error when any of the named tools is
// missing from PATH. Commands that shell out call this before doing any
// work so a half-finished operation never reveals the missing tool.
func RequireTools(runner run.Runner, osName string, tools ...string) error {
	var missing []string
	for _, tool := range tools {
		if _, err := runner.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.New(errors.ErrDeps,
		"Missing required tool"+pluralize(len(missing))+": "+strings.Join(missing, ", "),
		installHint(osName))
}
