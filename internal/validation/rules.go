package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Namespace validates the "<database>.<collection>" form with both parts non-empty.
var Namespace = validation.NewStringRuleWithError(
	func(s string) bool {
		db, coll, ok := strings.Cut(s, ".")
		return ok && db != "" && coll != ""
	},
	validation.NewError("validation_namespace", "must be in the form <database>.<collection>"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
