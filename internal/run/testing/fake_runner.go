// Package testing provides test doubles for the run package.
package testing

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/rileyhilliard/gitkeys/internal/run"
)

// Call records one command invocation.
type Call struct {
	Name string
	Args []string
}

// Command returns the full command line, for assertions.
func (c Call) Command() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Response defines a canned outcome for a command pattern.
type Response struct {
	Output   []byte
	ExitCode int
	Err      error
}

// FakeRunner simulates external commands for testing.
// It records calls and returns configured responses, matched by exact
// command line first, then by regex pattern.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]Response

	// Default is returned when no registered pattern matches.
	Default Response

	// MissingTools lists names LookPath should report as not installed.
	MissingTools map[string]bool

	// OnRun, when set, runs for every call before the response is resolved.
	// Useful for simulating side effects such as ssh-keygen writing key files.
	OnRun func(name string, args []string)

	// Calls tracks every invocation in order.
	Calls []Call
}

// NewFakeRunner creates a fake runner that succeeds with empty output by default.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses:    make(map[string]Response),
		MissingTools: make(map[string]bool),
	}
}

// SetResponse registers a canned response for a command line or regex pattern.
func (f *FakeRunner) SetResponse(pattern string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[pattern] = resp
	return f
}

// SetMissing marks a tool name as absent for LookPath.
func (f *FakeRunner) SetMissing(names ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.MissingTools[n] = true
	}
	return f
}

// Run simulates a command invocation.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (run.Result, error) {
	select {
	case <-ctx.Done():
		return run.Result{ExitCode: -1}, ctx.Err()
	default:
	}

	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Name: name, Args: args})
	hook := f.OnRun
	f.mu.Unlock()

	if hook != nil {
		hook(name, args)
	}

	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()

	// Exact command matches win over patterns.
	if resp, ok := f.responses[cmdline]; ok {
		return toResult(resp)
	}
	for pattern, resp := range f.responses {
		if matched, _ := regexp.MatchString(pattern, cmdline); matched {
			return toResult(resp)
		}
	}
	return toResult(f.Default)
}

// LookPath reports a synthetic path unless the tool was marked missing.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MissingTools[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

func toResult(resp Response) (run.Result, error) {
	if resp.Err != nil {
		return run.Result{Output: resp.Output, ExitCode: -1}, resp.Err
	}
	return run.Result{Output: resp.Output, ExitCode: resp.ExitCode}, nil
}

// CallsTo returns the recorded calls that invoked the given binary.
func (f *FakeRunner) CallsTo(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// LastCall returns the most recent call, or nil if none.
func (f *FakeRunner) LastCall() *Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return nil
	}
	call := f.Calls[len(f.Calls)-1]
	return &call
}

// Reset clears all recorded calls.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}
