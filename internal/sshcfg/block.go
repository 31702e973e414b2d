// Package sshcfg edits the managed SSH config file that maps host aliases
// to key files. Mutation is line-based so hand edits outside managed blocks
// survive; reads go through the ssh_config parser.
package sshcfg

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Block is one managed host entry. Rendered blocks always pin the git user
// and IdentitiesOnly so the platform sees exactly one key per alias.
type Block struct {
	Alias        string
	Hostname     string
	User         string // defaults to "git"
	IdentityFile string
}

// Render returns the block in the exact shape written to the config file.
func (b Block) Render() string {
	user := b.User
	if user == "" {
		user = "git"
	}
	return fmt.Sprintf(
		"Host %s\n    HostName %s\n    User %s\n    IdentityFile %s\n    IdentitiesOnly yes\n",
		b.Alias, b.Hostname, user, b.IdentityFile)
}

// isHostLine reports whether a line is a single-pattern Host directive for
// alias. Multi-pattern Host lines never match; those are not managed blocks.
func isHostLine(line, alias string) bool {
	fields := strings.Fields(line)
	return len(fields) == 2 && strings.EqualFold(fields[0], "Host") && fields[1] == alias
}

// isBlockStart reports whether a line opens a new Host or Match section.
func isBlockStart(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	return strings.EqualFold(fields[0], "Host") || strings.EqualFold(fields[0], "Match")
}

// removeBlockLines drops the block headed by `Host <alias>` from lines,
// through to the next Host/Match directive or end of file.
func removeBlockLines(lines []string, alias string) ([]string, bool) {
	var out []string
	removed := false
	skipping := false

	for _, line := range lines {
		if skipping {
			if !isBlockStart(line) {
				continue
			}
			skipping = false
		}
		if isHostLine(line, alias) {
			skipping = true
			removed = true
			continue
		}
		out = append(out, line)
	}
	return out, removed
}

// hasBlock reports whether any line opens a managed block for alias.
func hasBlock(lines []string, alias string) bool {
	for _, line := range lines {
		if isHostLine(line, alias) {
			return true
		}
	}
	return false
}

// aliasesUsingIdentity collects the alias of every single-pattern block whose
// IdentityFile points at keyRef, either by full path or by file name.
func aliasesUsingIdentity(lines []string, keyRef string) []string {
	base := filepath.Base(keyRef)
	var aliases []string
	current := ""

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.EqualFold(fields[0], "Host") || strings.EqualFold(fields[0], "Match") {
			current = ""
			if strings.EqualFold(fields[0], "Host") && len(fields) == 2 {
				current = fields[1]
			}
			continue
		}
		if current == "" || !strings.EqualFold(fields[0], "IdentityFile") || len(fields) < 2 {
			continue
		}
		value := fields[1]
		if value == keyRef || filepath.Base(value) == base {
			aliases = append(aliases, current)
			current = ""
		}
	}
	return aliases
}
