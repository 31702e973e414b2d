// Package run abstracts external tool invocation so the commands gitkeys
// shells out to (ssh-keygen, ssh, ssh-add, ssh-agent) can be faked in tests.
package run

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/logger"
)

// Result holds the outcome of an external command that actually ran.
// Output is the combined stdout and stderr; the tools gitkeys drives
// (notably ssh -T) write their interesting text to stderr.
type Result struct {
	Output   []byte
	ExitCode int
}

// Runner executes external commands. A non-zero exit is not an error:
// Run returns an error only when the process could not be started at all,
// so callers can classify exit codes themselves.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
	LookPath(name string) (string, error)
}

// Exec implements Runner using os/exec.
type Exec struct {
	log logger.Logger
}

// New creates a Runner backed by the local OS.
func New() *Exec {
	return &Exec{log: logger.NewEnvLogger("[run]")}
}

// Run executes name with args, honoring context cancellation.
func (e *Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	e.log.Debug("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			// Command ran but returned non-zero; callers decide what that means.
			e.log.Debug("exec: %s exited %d", name, exitErr.ExitCode())
			return Result{Output: out, ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{Output: out, ExitCode: -1}, errors.WrapWithCode(runErr, errors.ErrDeps,
			fmt.Sprintf("Couldn't run %s", name),
			"Make sure the tool is installed and on your PATH.")
	}

	return Result{Output: out, ExitCode: 0}, nil
}

// LookPath reports the full path of name, or an error if it is not installed.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
