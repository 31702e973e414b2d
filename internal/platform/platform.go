// Package platform maps hosted Git platform names to their default
// hostnames and the profile pages where public keys get pasted.
package platform

import (
	"sort"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

// Profile describes one hosted Git platform. The registry is static and
// read-only.
type Profile struct {
	// Key is the canonical platform name used in flags and key names.
	Key string

	// DefaultHostname is the SSH endpoint, empty when the platform
	// requires an explicit --host value.
	DefaultHostname string

	// ProfileURL is the settings page for adding public keys. Empty for
	// platforms where the URL depends on the hostname; see KeysURL.
	ProfileURL string

	// NeedsHostname marks platforms without a fixed hostname.
	NeedsHostname bool
}

var profiles = map[string]Profile{
	"github": {
		Key:             "github",
		DefaultHostname: "github.com",
		ProfileURL:      "https://github.com/settings/keys",
	},
	"gitlab": {
		Key:             "gitlab",
		DefaultHostname: "gitlab.com",
		ProfileURL:      "https://gitlab.com/-/profile/keys",
	},
	"gitlab-selfhosted": {
		Key:           "gitlab-selfhosted",
		NeedsHostname: true,
	},
	"bitbucket": {
		Key:             "bitbucket",
		DefaultHostname: "bitbucket.org",
		ProfileURL:      "https://bitbucket.org/account/settings/ssh-keys/",
	},
	"custom": {
		Key:           "custom",
		NeedsHostname: true,
	},
}

// Lookup resolves a platform name to its profile.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, errors.New(errors.ErrValidate,
			"Unknown platform: "+name,
			"Valid platforms: "+strings.Join(Names(), ", "))
	}
	return p, nil
}

// All returns every profile, sorted by key for stable listings.
func All() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Names returns the sorted platform names for help text and errors.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for k := range profiles {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Hostname resolves the SSH endpoint: an explicit flag value wins, platforms
// with a fixed hostname fall back to it, and hostname-less platforms require
// the flag.
func (p Profile) Hostname(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p.NeedsHostname {
		return "", errors.New(errors.ErrValidate,
			"Platform "+p.Key+" needs a hostname",
			"Pass --host with your server's hostname, e.g. --host gitlab.example.com")
	}
	return p.DefaultHostname, nil
}

// KeyName computes the key file name for an identifier: <platform>_<identifier>.
func (p Profile) KeyName(identifier string) string {
	return p.Key + "_" + identifier
}

// Alias computes the SSH host alias written to the config file.
//
// Hosted platforms use <platform>.com-<identifier> regardless of the real
// hostname, so bitbucket gets "bitbucket.com-work" even though it lives at
// bitbucket.org. That naming is inherited and kept: existing config files
// and remote URLs depend on it. Hostname-bound platforms use
// <hostname>-<identifier>.
func (p Profile) Alias(hostname, identifier string) string {
	if p.NeedsHostname {
		return hostname + "-" + identifier
	}
	return p.Key + ".com-" + identifier
}

// KeysURL returns the page where the public key should be added, or empty
// when the platform has no known settings URL.
func (p Profile) KeysURL(hostname string) string {
	if p.Key == "gitlab-selfhosted" && hostname != "" {
		return "https://" + hostname + "/-/profile/keys"
	}
	return p.ProfileURL
}

// SplitKeyName splits a key file name back into platform key and identifier.
// Returns ok=false for names that don't follow <platform>_<identifier>.
func SplitKeyName(name string) (platformKey, identifier string, ok bool) {
	i := strings.Index(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}
