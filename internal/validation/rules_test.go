package validation

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "valid namespace",
			input:     "encryption.__keyVault",
			shouldErr: false,
		},
		{
			name:      "dotted collection",
			input:     "encryption.keys.v2",
			shouldErr: false,
		},
		{
			name:      "missing dot",
			input:     "keyvault",
			shouldErr: true,
		},
		{
			name:      "empty collection",
			input:     "encryption.",
			shouldErr: true,
		},
		{
			name:      "empty database",
			input:     ".__keyVault",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Namespace.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBase64(t *testing.T) {
	assert.NoError(t, Base64.Validate("aGVsbG8="))
	assert.NoError(t, Base64.Validate(""))
	assert.Error(t, Base64.Validate("not base64!"))
	assert.Error(t, Base64.Validate(42))
}

func TestBase64Length(t *testing.T) {
	rule := Base64Length(16)

	tests := []struct {
		name      string
		input     interface{}
		shouldErr bool
		errMsg    string
	}{
		{
			name:      "exact length",
			input:     base64.StdEncoding.EncodeToString(make([]byte, 16)),
			shouldErr: false,
		},
		{
			name:      "empty is left to Required",
			input:     "",
			shouldErr: false,
		},
		{
			name:      "too short",
			input:     base64.StdEncoding.EncodeToString(make([]byte, 8)),
			shouldErr: true,
			errMsg:    "must decode to 16 bytes, got 8",
		},
		{
			name:      "invalid base64",
			input:     "%%%",
			shouldErr: true,
			errMsg:    "must be valid base64-encoded data",
		},
		{
			name:      "not a string",
			input:     16,
			shouldErr: true,
			errMsg:    "must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.input)
			if tt.shouldErr {
				assert.ErrorContains(t, err, tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "no whitespace",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "leading whitespace",
			input:     " validstring",
			shouldErr: true,
		},
		{
			name:      "trailing whitespace",
			input:     "validstring ",
			shouldErr: true,
		},
		{
			name:      "both leading and trailing",
			input:     " validstring ",
			shouldErr: true,
		},
		{
			name:      "internal spaces allowed",
			input:     "valid string",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoWhitespace.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "valid string",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "only spaces",
			input:     "   ",
			shouldErr: true,
		},
		{
			name:      "only tabs",
			input:     "\t\t",
			shouldErr: true,
		},
		{
			name:      "only newlines",
			input:     "\n\n",
			shouldErr: true,
		},
		{
			name:      "mixed whitespace",
			input:     " \t\n ",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error returns nil",
			err:      nil,
			expected: false,
		},
		{
			name:     "wraps validation error",
			err:      assert.AnError,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapValidationError(tt.err)
			if tt.expected {
				assert.Error(t, result)
				assert.Contains(t, result.Error(), "invalid input")
			} else {
				assert.NoError(t, result)
			}
		})
	}
}
