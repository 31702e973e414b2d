package keygen

import (
	"context"
	"strconv"
	"strings"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/pkg/keyinfo"
)

// Details holds what ssh-keygen reports about a key.
type Details struct {
	Bits        int
	Fingerprint string
	Comment     string
	Algorithm   string
}

// Inspect runs ssh-keygen -l -f on a key file and parses the fingerprint
// line, e.g. "256 SHA256:GXfx... user@host (ED25519)".
func (t *Tool) Inspect(ctx context.Context, path string) (Details, error) {
	result, err := t.runner.Run(ctx, "ssh-keygen", "-l", "-f", path)
	if err != nil {
		return Details{}, err
	}
	if result.ExitCode != 0 {
		return Details{}, errors.New(errors.ErrKeygen,
			"Couldn't read fingerprint for "+path,
			strings.TrimSpace(string(result.Output)))
	}
	return parseFingerprintLine(string(result.Output))
}

func parseFingerprintLine(output string) (Details, error) {
	line := output
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Details{}, errors.New(errors.ErrKeygen,
			"Unexpected fingerprint format: "+strings.TrimSpace(line),
			"")
	}

	bits, err := strconv.Atoi(fields[0])
	if err != nil {
		bits = 0
	}

	// Last field is the algorithm in parentheses; everything between the
	// fingerprint and it is the comment.
	algorithm := strings.Trim(fields[len(fields)-1], "()")
	comment := strings.Join(fields[2:len(fields)-1], " ")

	return Details{
		Bits:        bits,
		Fingerprint: fields[1],
		Comment:     comment,
		Algorithm:   algorithm,
	}, nil
}

// ParsePublicKey parses an authorized_keys-format public key file without
// shelling out. Used as the inspection fallback when ssh-keygen can't run.
func ParsePublicKey(path string) (algorithm, fingerprint, comment string, err error) {
	key, err := keyinfo.ParseFile(path)
	if err != nil {
		return "", "", "", err
	}
	return key.Type, key.Fingerprint, key.Comment, nil
}
