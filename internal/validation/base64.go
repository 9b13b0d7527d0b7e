// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
)

// Base64 validates that a string is valid base64-encoded data.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	_, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// Base64Length validates that a string is standard base64 decoding to exactly n bytes.
// Used for data key identifiers (16 bytes) and local master keys (32 bytes).
func Base64Length(n int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_base64_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_base64", "must be valid base64-encoded data")
		}
		if len(raw) != n {
			return validation.NewError(
				"validation_base64_length",
				fmt.Sprintf("must decode to %d bytes, got %d", n, len(raw)),
			)
		}
		return nil
	})
}
