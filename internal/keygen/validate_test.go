package keygen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantErr    bool
	}{
		{name: "simple word", identifier: "work", wantErr: false},
		{name: "with hyphen", identifier: "work-laptop", wantErr: false},
		{name: "with underscore", identifier: "work_laptop", wantErr: false},
		{name: "with digits", identifier: "ci2", wantErr: false},
		{name: "uppercase", identifier: "CI", wantErr: false},
		{name: "single char", identifier: "a", wantErr: false},
		{name: "empty", identifier: "", wantErr: true},
		{name: "space", identifier: "my key", wantErr: true},
		{name: "at sign", identifier: "user@host", wantErr: true},
		{name: "slash", identifier: "a/b", wantErr: true},
		{name: "dot", identifier: "work.laptop", wantErr: true},
		{name: "unicode", identifier: "schlüssel", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.identifier)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrValidate))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "empty is accepted", email: "", wantErr: false},
		{name: "simple address", email: "user@example.com", wantErr: false},
		{name: "dotted local part", email: "first.last@example.co.uk", wantErr: false},
		{name: "plus tag", email: "user+git@example.com", wantErr: false},
		{name: "missing at", email: "userexample.com", wantErr: true},
		{name: "missing tld", email: "user@example", wantErr: true},
		{name: "space inside", email: "user name@example.com", wantErr: true},
		{name: "double at", email: "user@@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrValidate))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
