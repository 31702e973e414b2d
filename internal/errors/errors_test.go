package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	// Verify all expected error codes exist
	codes := []string{
		ErrValidate,
		ErrExists,
		ErrKeygen,
		ErrDeps,
		ErrConfig,
		ErrAgent,
		ErrConnect,
	}

	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
	}

	// Verify codes are unique
	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "validation error",
			code:       ErrValidate,
			message:    "Invalid key identifier 'my key'",
			suggestion: "Use letters, digits, hyphens, and underscores only",
		},
		{
			name:       "exists error",
			code:       ErrExists,
			message:    "Key github_work already exists",
			suggestion: "Re-run with --overwrite to replace it",
		},
		{
			name:       "keygen error",
			code:       ErrKeygen,
			message:    "ssh-keygen exited with status 1",
			suggestion: "Check the output above for details",
		},
		{
			name:       "deps error",
			code:       ErrDeps,
			message:    "ssh-keygen not found in PATH",
			suggestion: "Install OpenSSH: brew install openssh",
		},
		{
			name:       "agent error",
			code:       ErrAgent,
			message:    "Could not register key with ssh-agent",
			suggestion: "Start the agent and retry: eval \"$(ssh-agent -s)\"",
		},
		{
			name:       "connect error",
			code:       ErrConnect,
			message:    "Authentication to github.com failed",
			suggestion: "Add the public key at https://github.com/settings/keys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorInterface(t *testing.T) {
	err := New(ErrConfig, "test message", "test suggestion")

	// Should implement error interface
	var _ error = err

	// Error() should return formatted message
	errStr := err.Error()
	assert.NotEmpty(t, errStr)
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name: "basic error formatting",
			err:  New(ErrConfig, "Cannot write ~/.ssh/config", "Check file permissions"),
			expectedParts: []string{
				"Cannot write ~/.ssh/config",
				"Check file permissions",
			},
		},
		{
			name: "error with failure symbol",
			err:  New(ErrConnect, "Connection failed", "Try again"),
			expectedParts: []string{
				"✗",
				"Connection failed",
			},
		},
		{
			name: "error without suggestion",
			err:  New(ErrKeygen, "Key generation failed", ""),
			expectedParts: []string{
				"Key generation failed",
			},
			notExpected: []string{
				"suggestion", // Should not include suggestion header if empty
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()

			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part, "output should contain %q", part)
			}

			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part, "output should not contain %q", part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	wrapped := Wrap(cause, "Cannot update SSH config")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrConfig, wrapped.Code, "Wrap should default to ErrConfig code")
	assert.Equal(t, "Cannot update SSH config", wrapped.Message)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("executable file not found in $PATH")
	wrapped := WrapWithCode(cause, ErrDeps, "ssh-add is not installed", "Install OpenSSH client tools")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrDeps, wrapped.Code)
	assert.Equal(t, "ssh-add is not installed", wrapped.Message)
	assert.Equal(t, "Install OpenSSH client tools", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestErrorWrappingPreservesCause(t *testing.T) {
	original := errors.New("original error")
	wrapped := WrapWithCode(original, ErrAgent, "Agent registration failed", "")

	// Should preserve the original cause
	assert.Equal(t, original, wrapped.Cause)

	// Error message should include cause information
	errStr := wrapped.Error()
	assert.Contains(t, errStr, "original error")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := WrapWithCode(cause, ErrKeygen, "Generation failed", "")

	// Should implement Unwrap for errors.Is/errors.As
	unwrapped := wrapped.Unwrap()
	assert.Equal(t, cause, unwrapped)
}

func TestErrorsIs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := WrapWithCode(cause, ErrExists, "Key already exists", "")

	// errors.Is should work with wrapped errors
	assert.True(t, errors.Is(wrapped, cause))
}

func TestErrorsAs(t *testing.T) {
	wrapped := New(ErrValidate, "Bad identifier", "Fix the name")

	var keyErr *Error
	ok := errors.As(wrapped, &keyErr)

	assert.True(t, ok)
	assert.Equal(t, ErrValidate, keyErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrValidate, "Bad identifier", "")

	assert.True(t, IsCode(err, ErrValidate))
	assert.False(t, IsCode(err, ErrConnect))
	assert.False(t, IsCode(errors.New("standard error"), ErrValidate))
	assert.False(t, IsCode(nil, ErrValidate))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	// IsCode should find the structured error even when wrapped further
	inner := New(ErrExists, "Key github_work already exists", "")
	outer := WrapWithCode(inner, ErrConfig, "Create workflow failed", "")

	assert.True(t, IsCode(outer, ErrConfig), "outermost code wins")
	assert.False(t, IsCode(outer, ErrExists), "errors.As stops at the first *Error")
}

func TestErrorMessageStructure(t *testing.T) {
	// Errors render as:
	// ✗ <What failed>
	//
	//   <Why it failed - technical details>
	//
	//   <How to fix it - actionable steps>

	err := WrapWithCode(
		errors.New("ssh: connect to host github.com port 22: Connection timed out"),
		ErrConnect,
		"Cannot reach github.com",
		"Check your network connection and try again",
	)

	output := err.Error()
	lines := strings.Split(output, "\n")

	// First line should have failure symbol and main message
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"), "First line should start with failure symbol")
	assert.Contains(t, lines[0], "Cannot reach github.com")
}
