package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

// Key vault error definitions.
//
// Each error wraps one of the standard errors from internal/errors so callers can
// branch on the broad kind (conflict, unavailable, ...) or on the exact failure.
var (
	// ErrKmsUnavailable indicates the KMS round-trip (wrap or unwrap) failed.
	//
	// Transient and retryable by the operator. Never retried automatically.
	ErrKmsUnavailable = errors.Wrap(errors.ErrUnavailable, "kms unavailable")

	// ErrVaultWriteFailed indicates a freshly wrapped data key could not be persisted.
	//
	// The KMS call already succeeded, so the wrapped key exists outside the vault.
	// Treat as a key leak: revoke or audit on the KMS side before retrying.
	ErrVaultWriteFailed = errors.Wrap(errors.ErrUnavailable, "key vault write failed")

	// ErrDuplicateKeyName indicates another data key already uses one of the requested
	// alternate names. Fatal to that create call only.
	ErrDuplicateKeyName = errors.Wrap(errors.ErrConflict, "duplicate key alt name")

	// ErrDataKeyNotFound indicates no data key matches the requested id or alternate name.
	ErrDataKeyNotFound = errors.Wrap(errors.ErrNotFound, "data key not found")

	// ErrInvalidKeyID indicates a data key identifier is not a 16-byte UUID (base64 or binary subtype 4).
	ErrInvalidKeyID = errors.Wrap(errors.ErrInvalidInput, "invalid key id")

	// ErrInvalidMasterKey indicates a master key reference is missing provider-specific locator fields.
	ErrInvalidMasterKey = errors.Wrap(errors.ErrInvalidInput, "invalid master key reference")

	// ErrInvalidKeyMaterial indicates unwrapped key material has an unexpected length.
	ErrInvalidKeyMaterial = errors.Wrap(errors.ErrInvalidInput, "invalid key material")

	// ErrResetNotConfirmed indicates a destructive reset was requested without the
	// matching confirmation token.
	ErrResetNotConfirmed = errors.Wrap(errors.ErrInvalidInput, "reset not confirmed")

	// ErrDependentDataPresent indicates collections encrypted under vault keys still exist,
	// so resetting the vault would make them permanently undecryptable.
	ErrDependentDataPresent = errors.Wrap(errors.ErrConflict, "encrypted collections still present")
)

// ErrInvalidAltName indicates an alternate name is empty or repeated within one request.
var ErrInvalidAltName = errors.Wrap(errors.ErrInvalidInput, "invalid key alt name")
