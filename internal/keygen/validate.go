package keygen

import (
	"regexp"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateIdentifier checks a key identifier: non-empty, letters, digits,
// hyphens, and underscores only.
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return errors.New(errors.ErrValidate,
			"Key identifier is empty",
			"Pick a short name like 'work' or 'personal'")
	}
	if !identifierPattern.MatchString(identifier) {
		return errors.New(errors.ErrValidate,
			"Invalid key identifier: "+identifier,
			"Use letters, digits, hyphens, and underscores only")
	}
	return nil
}

// ValidateEmail checks an optional key comment email. Empty is accepted.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if !emailPattern.MatchString(email) {
		return errors.New(errors.ErrValidate,
			"Invalid email address: "+email,
			"Use the form user@example.com, or leave it empty")
	}
	return nil
}
