package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

// Schema provisioning error definitions.
//
// Configuration-shape errors (unknown algorithm, empty policy, bad paths or types) are
// detected before any network call. Operational errors are reported per collection.
var (
	// ErrUnknownAlgorithmTag indicates a policy names an algorithm outside the supported set.
	ErrUnknownAlgorithmTag = errors.Wrap(errors.ErrInvalidInput, "unknown algorithm tag")

	// ErrEmptyPolicy indicates a policy lists zero fields.
	ErrEmptyPolicy = errors.Wrap(errors.ErrInvalidInput, "empty encryption policy")

	// ErrUnsupportedBSONType indicates a field declares a value type the store cannot encrypt.
	ErrUnsupportedBSONType = errors.Wrap(errors.ErrInvalidInput, "unsupported bson type")

	// ErrDeterministicType indicates deterministic encryption was requested for a value
	// type that only supports randomized encryption.
	ErrDeterministicType = errors.Wrap(errors.ErrInvalidInput, "type not allowed with deterministic encryption")

	// ErrInvalidFieldPath indicates an empty, malformed, repeated or overlapping field path.
	ErrInvalidFieldPath = errors.Wrap(errors.ErrInvalidInput, "invalid field path")

	// ErrInvalidRegistry indicates the provisioning registry file is malformed.
	ErrInvalidRegistry = errors.Wrap(errors.ErrInvalidInput, "invalid provisioning registry")

	// ErrDuplicateCollection indicates the registry lists the same collection twice.
	ErrDuplicateCollection = errors.Wrap(errors.ErrConflict, "duplicate collection in registry")

	// ErrProvisionConflict indicates the live validator binds an existing encrypted field
	// to a different data key than the desired schema. Never overwritten silently.
	ErrProvisionConflict = errors.Wrap(errors.ErrConflict, "provision conflict")

	// ErrCollectionExists indicates a create raced with another creator of the same collection.
	ErrCollectionExists = errors.Wrap(errors.ErrConflict, "collection already exists")

	// ErrCollectionNotFound indicates a validator update targeted a missing collection.
	ErrCollectionNotFound = errors.Wrap(errors.ErrNotFound, "collection not found")

	// ErrStoreUnavailable indicates a transient connectivity failure with the document store.
	ErrStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "store unavailable")

	// ErrDropNotConfirmed indicates a collection drop was requested without the matching
	// confirmation token.
	ErrDropNotConfirmed = errors.Wrap(errors.ErrInvalidInput, "drop not confirmed")

	// ErrRunInProgress indicates a run was requested while another one is still running.
	ErrRunInProgress = errors.Wrap(errors.ErrConflict, "provisioning run in progress")
)

// ErrRunAborted indicates a provisioning run stopped before applying any collection,
// because no data key could be resolved.
var ErrRunAborted = errors.New("provisioning run aborted")
