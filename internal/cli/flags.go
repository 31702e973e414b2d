package cli

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

// parseTimeout parses a probe timeout flag into a duration.
// Returns zero duration if the flag is empty.
func parseTimeout(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrValidate,
			fmt.Sprintf("'%s' doesn't look like a valid timeout", flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	if duration <= 0 {
		return 0, errors.New(errors.ErrValidate,
			fmt.Sprintf("Timeout must be positive, got '%s'", flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	return duration, nil
}

// shortError extracts the one-line message from a structured error, for
// warning lines where the full multi-line rendering is too loud.
func shortError(err error) string {
	if err == nil {
		return ""
	}
	var keyErr *errors.Error
	if stderrors.As(err, &keyErr) {
		return keyErr.Message
	}
	return err.Error()
}
