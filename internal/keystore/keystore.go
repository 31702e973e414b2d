// Package keystore enumerates and manages the key pairs in the store
// directory. The directory itself is the only source of truth; nothing is
// indexed or cached between calls.
package keystore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/keygen"
	"github.com/rileyhilliard/gitkeys/internal/logger"
)

// Entry is one key pair discovered in the store.
type Entry struct {
	Name        string
	PrivatePath string
	PublicPath  string
	Algorithm   string // "unknown" when inspection fails
	Bits        int    // 0 when inspection fails
}

// Inspector reports a key's algorithm and size. *keygen.Tool satisfies it.
type Inspector interface {
	Inspect(ctx context.Context, path string) (keygen.Details, error)
}

// Store scans and mutates a key directory.
type Store struct {
	dir       string
	inspector Inspector
	log       logger.Logger
}

// reservedNames are files in the store directory that are never key pairs.
var reservedNames = map[string]bool{
	"config":      true,
	"known_hosts": true,
}

// NewStore creates a store over dir. The inspector may be nil, in which case
// every entry reports an unknown algorithm.
func NewStore(dir string, inspector Inspector) *Store {
	return &Store{
		dir:       dir,
		inspector: inspector,
		log:       logger.NewEnvLogger("[keystore]"),
	}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Scan lists every key pair, sorted by name. A file counts as a key when it
// is a regular file, does not end in .pub, is not the config or known-hosts
// file, and has a .pub sibling. Inspection failures degrade the entry to an
// unknown algorithm instead of aborting the scan.
func (s *Store) Scan(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read key directory "+s.dir,
			"Check that the directory exists and is readable")
	}

	var out []Entry
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		if strings.HasSuffix(name, ".pub") || reservedNames[name] {
			continue
		}

		publicPath := filepath.Join(s.dir, name+".pub")
		if !fileExists(publicPath) {
			continue
		}

		entry := Entry{
			Name:        name,
			PrivatePath: filepath.Join(s.dir, name),
			PublicPath:  publicPath,
			Algorithm:   "unknown",
		}
		if s.inspector != nil {
			details, inspectErr := s.inspector.Inspect(ctx, entry.PrivatePath)
			if inspectErr != nil {
				s.log.Debug("inspect %s: %v", entry.PrivatePath, inspectErr)
			} else {
				entry.Algorithm = details.Algorithm
				entry.Bits = details.Bits
			}
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ForPlatform lists the key pairs whose name carries a platform prefix,
// e.g. "github" matches github_work and github_personal.
func (s *Store) ForPlatform(ctx context.Context, platformKey string) ([]Entry, error) {
	all, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}

	prefix := platformKey + "_"
	var out []Entry
	for _, e := range all {
		if strings.HasPrefix(e.Name, prefix) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Find returns the entry with the given name.
func (s *Store) Find(ctx context.Context, name string) (*Entry, error) {
	all, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, errors.New(errors.ErrValidate,
		"No key named "+name,
		"Run 'gitkeys list' to see available keys")
}

// Exists reports whether a key with this name has either file present.
func (s *Store) Exists(name string) bool {
	return fileExists(filepath.Join(s.dir, name)) ||
		fileExists(filepath.Join(s.dir, name+".pub"))
}

// Delete removes both files of a key pair. Reserved store files are never
// deletable through this path.
func (s *Store) Delete(name string) error {
	if reservedNames[name] || name == "" {
		return errors.New(errors.ErrValidate,
			"Not a key name: "+name,
			"Run 'gitkeys list' to see available keys")
	}
	if !s.Exists(name) {
		return errors.New(errors.ErrValidate,
			"No key named "+name,
			"Run 'gitkeys list' to see available keys")
	}

	privatePath := filepath.Join(s.dir, name)
	publicPath := privatePath + ".pub"

	for _, path := range []string{privatePath, publicPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't delete "+path,
				"Check file permissions")
		}
	}
	s.log.Debug("deleted key pair %s", name)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
