package sshcfg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockRender(t *testing.T) {
	block := Block{
		Alias:        "github.com-work",
		Hostname:     "github.com",
		IdentityFile: "/home/dev/.ssh/gitkeys/github_work",
	}

	expected := "Host github.com-work\n" +
		"    HostName github.com\n" +
		"    User git\n" +
		"    IdentityFile /home/dev/.ssh/gitkeys/github_work\n" +
		"    IdentitiesOnly yes\n"

	assert.Equal(t, expected, block.Render())
}

func TestBlockRenderCustomUser(t *testing.T) {
	block := Block{
		Alias:        "git.corp.example-deploy",
		Hostname:     "git.corp.example",
		User:         "deploy",
		IdentityFile: "/keys/custom_deploy",
	}

	assert.Contains(t, block.Render(), "    User deploy\n")
}

func TestRemoveBlockLines(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		alias       string
		wantRemoved bool
		wantGone    string
		wantKept    []string
	}{
		{
			name: "middle block",
			content: "Host github.com-work\n    HostName github.com\n\n" +
				"Host gitlab.com-ci\n    HostName gitlab.com\n\n" +
				"Host bitbucket.com-team\n    HostName bitbucket.org\n",
			alias:       "gitlab.com-ci",
			wantRemoved: true,
			wantGone:    "gitlab.com",
			wantKept:    []string{"Host github.com-work", "Host bitbucket.com-team"},
		},
		{
			name:        "first block",
			content:     "Host github.com-work\n    HostName github.com\n\nHost gitlab.com-ci\n    HostName gitlab.com\n",
			alias:       "github.com-work",
			wantRemoved: true,
			wantGone:    "github.com\n",
			wantKept:    []string{"Host gitlab.com-ci"},
		},
		{
			name:        "last block runs to end of file",
			content:     "Host github.com-work\n    HostName github.com\n\nHost gitlab.com-ci\n    HostName gitlab.com\n    IdentitiesOnly yes\n",
			alias:       "gitlab.com-ci",
			wantRemoved: true,
			wantGone:    "gitlab.com",
			wantKept:    []string{"Host github.com-work"},
		},
		{
			name:        "absent alias leaves lines alone",
			content:     "Host github.com-work\n    HostName github.com\n",
			alias:       "gitlab.com-ci",
			wantRemoved: false,
			wantKept:    []string{"Host github.com-work", "HostName github.com"},
		},
		{
			name:        "multi-pattern host line never matches",
			content:     "Host github.com-work backup-alias\n    HostName github.com\n",
			alias:       "github.com-work",
			wantRemoved: false,
			wantKept:    []string{"Host github.com-work backup-alias"},
		},
		{
			name:        "lowercase host keyword",
			content:     "host github.com-work\n    HostName github.com\n",
			alias:       "github.com-work",
			wantRemoved: true,
			wantGone:    "github.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, removed := removeBlockLines(strings.Split(tt.content, "\n"), tt.alias)
			joined := strings.Join(lines, "\n")

			assert.Equal(t, tt.wantRemoved, removed)
			if tt.wantGone != "" && tt.wantRemoved {
				assert.NotContains(t, joined, tt.wantGone)
			}
			for _, kept := range tt.wantKept {
				assert.Contains(t, joined, kept)
			}
		})
	}
}

func TestRemoveBlockStopsAtMatchDirective(t *testing.T) {
	content := "Host github.com-work\n    HostName github.com\n\nMatch host *.internal\n    User admin\n"

	lines, removed := removeBlockLines(strings.Split(content, "\n"), "github.com-work")
	joined := strings.Join(lines, "\n")

	assert.True(t, removed)
	assert.Contains(t, joined, "Match host *.internal")
	assert.Contains(t, joined, "User admin")
}

func TestAliasesUsingIdentity(t *testing.T) {
	content := "Host github.com-work\n" +
		"    HostName github.com\n" +
		"    IdentityFile /home/dev/.ssh/gitkeys/github_work\n" +
		"\n" +
		"Host gitlab.com-ci\n" +
		"    HostName gitlab.com\n" +
		"    IdentityFile ~/.ssh/gitkeys/gitlab_ci\n" +
		"\n" +
		"Host server1 server2\n" +
		"    IdentityFile /home/dev/.ssh/gitkeys/github_work\n"
	lines := strings.Split(content, "\n")

	tests := []struct {
		name   string
		keyRef string
		want   []string
	}{
		{
			name:   "full path",
			keyRef: "/home/dev/.ssh/gitkeys/github_work",
			want:   []string{"github.com-work"},
		},
		{
			name:   "bare key name",
			keyRef: "gitlab_ci",
			want:   []string{"gitlab.com-ci"},
		},
		{
			name:   "different location same file name",
			keyRef: "/elsewhere/github_work",
			want:   []string{"github.com-work"},
		},
		{
			name:   "no match",
			keyRef: "bitbucket_team",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aliasesUsingIdentity(lines, tt.keyRef))
		})
	}
}

func TestAliasesUsingIdentitySkipsMultiPatternBlocks(t *testing.T) {
	content := "Host server1 server2\n    IdentityFile /keys/shared_key\n"

	aliases := aliasesUsingIdentity(strings.Split(content, "\n"), "shared_key")

	assert.Empty(t, aliases)
}
