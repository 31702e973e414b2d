// Package probe runs authentication probes against Git platform hosts with
// the external ssh client. Hosted Git platforms answer a successful key auth
// with exit code 1 and a greeting, since no shell is granted; that exit code
// counts as success here and must not be reclassified.
package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/logger"
	"github.com/rileyhilliard/gitkeys/internal/run"
)

// FailReason categorizes why a probe failed.
type FailReason int

const (
	FailUnknown FailReason = iota
	FailTimeout
	FailRefused
	FailUnreachable
	FailAuth
	FailHostKey
)

// String returns a human-readable description of the failure reason.
func (r FailReason) String() string {
	switch r {
	case FailTimeout:
		return "connection timed out"
	case FailRefused:
		return "connection refused"
	case FailUnreachable:
		return "host unreachable"
	case FailAuth:
		return "authentication failed"
	case FailHostKey:
		return "host key verification failed"
	default:
		return "unknown error"
	}
}

// Suggestion returns a remediation hint for the failure reason. dest is the
// probed destination, used to render copyable commands.
func (r FailReason) Suggestion(dest string) string {
	switch r {
	case FailTimeout:
		return "Connection timed out. Host might be offline or blocked by a firewall."
	case FailRefused:
		return "Is SSH open on that host? Try: ssh -vT " + dest
	case FailUnreachable:
		return "Can't route to the host. Check your network connection."
	case FailAuth:
		return "The platform rejected every offered key. Add the public key to your account, then retry."
	case FailHostKey:
		return "Host key mismatch. Remove the stale entry with: ssh-keygen -R " + strings.TrimPrefix(dest, "git@")
	default:
		return "Run the probe by hand for details: ssh -vT " + dest
	}
}

// Target names what to probe: a config alias, or a hostname with an
// optional pinned key.
type Target struct {
	Alias    string // resolved through the ssh client's own config
	Hostname string // probed directly as git@<hostname>
	KeyPath  string // pins the identity when set
}

// destination is the final ssh argument.
func (t Target) destination() string {
	if t.Alias != "" {
		return t.Alias
	}
	return "git@" + t.Hostname
}

// Result is the outcome of one probe. A failed probe is data, not an error;
// errors are reserved for probes that could not run at all.
type Result struct {
	Target   string
	Success  bool
	ExitCode int
	Output   string
	Reason   FailReason
	Hint     string
	Duration time.Duration
}

// Tester runs probes through the external ssh client.
type Tester struct {
	runner     run.Runner
	timeout    time.Duration
	knownHosts string
	log        logger.Logger
}

// NewTester creates a tester. knownHosts may be empty to use the ssh
// client's own known-hosts handling.
func NewTester(runner run.Runner, timeout time.Duration, knownHosts string) *Tester {
	return &Tester{
		runner:     runner,
		timeout:    timeout,
		knownHosts: knownHosts,
		log:        logger.NewEnvLogger("[probe]"),
	}
}

// Test runs one authentication probe. Exit codes 0 and 1 both mean the key
// authenticated; anything else is classified into a failure reason with a
// remediation hint.
func (p *Tester) Test(ctx context.Context, target Target) (Result, error) {
	if target.Alias == "" && target.Hostname == "" {
		return Result{}, errors.New(errors.ErrValidate,
			"Nothing to probe: need a host alias or a hostname", "")
	}

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	dest := target.destination()
	args := p.buildArgs(target)
	p.log.Debug("probing %s", dest)

	start := time.Now()
	res, err := p.runner.Run(runCtx, "ssh", args...)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Target:   dest,
		ExitCode: res.ExitCode,
		Output:   strings.TrimSpace(string(res.Output)),
		Duration: time.Since(start),
	}
	if res.ExitCode == 0 || res.ExitCode == 1 {
		result.Success = true
		return result, nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.Reason = FailTimeout
	} else {
		result.Reason = categorize(result.Output)
	}
	result.Hint = result.Reason.Suggestion(dest)
	return result, nil
}

// TestAll probes each target in order and reports every result plus an
// aggregate flag that is true when at least one probe succeeded. Probes run
// sequentially so the platforms don't see a burst of auth attempts.
func (p *Tester) TestAll(ctx context.Context, targets []Target) ([]Result, bool, error) {
	results := make([]Result, 0, len(targets))
	anySuccess := false

	for _, target := range targets {
		result, err := p.Test(ctx, target)
		if err != nil {
			return results, anySuccess, err
		}
		if result.Success {
			anySuccess = true
		}
		results = append(results, result)
	}
	return results, anySuccess, nil
}

func (p *Tester) buildArgs(target Target) []string {
	args := []string{"-T", "-o", "BatchMode=yes", "-o", "StrictHostKeyChecking=accept-new"}
	if p.knownHosts != "" {
		args = append(args, "-o", "UserKnownHostsFile="+p.knownHosts)
	}
	secs := int(p.timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	args = append(args, "-o", fmt.Sprintf("ConnectTimeout=%d", secs))
	if target.KeyPath != "" {
		args = append(args, "-i", target.KeyPath, "-o", "IdentitiesOnly=yes")
	}
	return append(args, target.destination())
}

// categorize maps raw ssh output to a failure reason.
func categorize(output string) FailReason {
	out := strings.ToLower(output)

	if strings.Contains(out, "timed out") || strings.Contains(out, "i/o timeout") {
		return FailTimeout
	}
	if strings.Contains(out, "connection refused") {
		return FailRefused
	}
	if strings.Contains(out, "no route to host") ||
		strings.Contains(out, "network is unreachable") ||
		strings.Contains(out, "could not resolve hostname") ||
		strings.Contains(out, "host is down") {
		return FailUnreachable
	}
	if strings.Contains(out, "permission denied") ||
		strings.Contains(out, "authentication failed") ||
		strings.Contains(out, "too many authentication failures") {
		return FailAuth
	}
	if strings.Contains(out, "host key") {
		return FailHostKey
	}
	return FailUnknown
}
