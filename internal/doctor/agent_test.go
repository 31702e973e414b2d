package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gitkeys/internal/agent"
	"github.com/rileyhilliard/gitkeys/internal/config"
	runtesting "github.com/rileyhilliard/gitkeys/internal/run/testing"
)

func TestAgentCheckReachable(t *testing.T) {
	fake := runtesting.NewFakeRunner()
	fake.SetResponse("ssh-add -l", runtesting.Response{
		Output: []byte("256 SHA256:abc dev@example.com (ED25519)\n" +
			"4096 SHA256:def ci (RSA)\n"),
		ExitCode: 0,
	})

	check := &AgentCheck{Bridge: agent.NewBridge(fake, false)}
	result := check.Run()

	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, "2 loaded")
}

func TestAgentCheckRunningButEmpty(t *testing.T) {
	fake := runtesting.NewFakeRunner()
	fake.SetResponse("ssh-add -l", runtesting.Response{
		Output:   []byte("The agent has no identities.\n"),
		ExitCode: 1,
	})

	check := &AgentCheck{Bridge: agent.NewBridge(fake, false)}
	result := check.Run()

	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, "0 loaded")
}

func TestAgentCheckUnreachable(t *testing.T) {
	fake := runtesting.NewFakeRunner()
	fake.SetResponse("ssh-add -l", runtesting.Response{ExitCode: 2})

	check := &AgentCheck{Bridge: agent.NewBridge(fake, false)}
	result := check.Run()

	assert.Equal(t, StatusWarn, result.Status)
	assert.True(t, result.Fixable)
	assert.Contains(t, result.Suggestion, "ssh-agent -s")
}

func TestAgentCheckFixStartsAgent(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("SSH_AGENT_PID", "")

	fake := runtesting.NewFakeRunner()
	fake.SetResponse("ssh-add -l", runtesting.Response{ExitCode: 2})
	fake.SetResponse("ssh-agent -s", runtesting.Response{
		Output: []byte("SSH_AUTH_SOCK=/tmp/ssh-fix/agent.9; export SSH_AUTH_SOCK;\n" +
			"SSH_AGENT_PID=10; export SSH_AGENT_PID;\n"),
		ExitCode: 0,
	})

	check := &AgentCheck{Bridge: agent.NewBridge(fake, false)}
	err := check.Fix()

	assert.NoError(t, err)
}

func TestNewChecks(t *testing.T) {
	settings := config.Default()
	settings.KeyDir = t.TempDir()
	fake := runtesting.NewFakeRunner()

	checks := NewChecks(settings, fake, agent.NewBridge(fake, false))

	require.Len(t, checks, 6)

	names := make([]string, 0, len(checks))
	for _, check := range checks {
		names = append(names, check.Name())
	}
	assert.Contains(t, names, "tool_ssh-keygen")
	assert.Contains(t, names, "tool_ssh")
	assert.Contains(t, names, "tool_ssh-add")
	assert.Contains(t, names, "agent")
	assert.Contains(t, names, "perms_keys")
}
