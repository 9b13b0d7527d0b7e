package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// ProvisionAction is what applying a schema did to a collection.
type ProvisionAction int

const (
	// ActionNone means the apply failed before changing anything.
	ActionNone ProvisionAction = iota
	// ActionCreated means the collection was created with the validator.
	ActionCreated
	// ActionAltered means the validator of an existing collection was replaced.
	ActionAltered
	// ActionUnchanged means the live validator already matched.
	ActionUnchanged
)

func (a ProvisionAction) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionAltered:
		return "altered"
	case ActionUnchanged:
		return "unchanged"
	default:
		return "none"
	}
}

// CollectionState is the live state of a collection in the target store.
type CollectionState struct {
	Name   string
	Exists bool
	// Schema is the live $jsonSchema validator, nil when the collection has none.
	Schema bson.Raw
}

// RunState is the state of one provisioning run.
type RunState int

// Provisioning run states. Completed and CompletedWithErrors are terminal.
const (
	RunNotStarted RunState = iota
	RunRunning
	RunCompleted
	RunCompletedWithErrors
)

func (s RunState) String() string {
	switch s {
	case RunRunning:
		return "Running"
	case RunCompleted:
		return "Completed"
	case RunCompletedWithErrors:
		return "CompletedWithErrors"
	default:
		return "NotStarted"
	}
}

// IsTerminal reports whether s ends a run.
func (s RunState) IsTerminal() bool {
	return s == RunCompleted || s == RunCompletedWithErrors
}

// Outcome statuses shown to operators.
const (
	StatusApplied = "applied"
	StatusNoOp    = "no-op"
	StatusFailed  = "failed"
)

// CollectionResult is the outcome of provisioning one collection.
type CollectionResult struct {
	Name   string
	Action ProvisionAction
	Err    error
}

// Status returns applied, no-op or failed.
func (r CollectionResult) Status() string {
	switch {
	case r.Err != nil:
		return StatusFailed
	case r.Action == ActionUnchanged:
		return StatusNoOp
	default:
		return StatusApplied
	}
}

// Report summarizes a provisioning run. Results follow registry order.
type Report struct {
	State      RunState
	KeyID      vaultDomain.KeyID
	Results    []CollectionResult
	StartedAt  time.Time
	FinishedAt time.Time
	// Aborted holds the error that stopped the run before any collection was applied.
	Aborted error
}

// Applied returns the names of collections created or altered.
func (r *Report) Applied() []string {
	return r.namesWithStatus(StatusApplied)
}

// Unchanged returns the names of collections whose validator already matched.
func (r *Report) Unchanged() []string {
	return r.namesWithStatus(StatusNoOp)
}

// Failed returns the failed results.
func (r *Report) Failed() []CollectionResult {
	var failed []CollectionResult
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Err joins the abort error and every per-collection failure, or returns nil.
func (r *Report) Err() error {
	var errs []error
	if r.Aborted != nil {
		errs = append(errs, r.Aborted)
	}
	for _, result := range r.Failed() {
		errs = append(errs, apperrors.Wrapf(result.Err, "%s", result.Name))
	}
	return apperrors.Join(errs...)
}

func (r *Report) namesWithStatus(status string) []string {
	var names []string
	for _, result := range r.Results {
		if result.Status() == status {
			names = append(names, result.Name)
		}
	}
	return names
}

// DropCollectionsInput carries the operator's confirmation for dropping encrypted collections.
type DropCollectionsInput struct {
	// Confirm must equal the target database name.
	Confirm string
	// Collections lists the collections to drop.
	Collections []string
}
