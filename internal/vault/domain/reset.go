package domain

// ResetVaultInput carries the operator's confirmation for a destructive vault reset.
//
// Resetting the vault makes every field encrypted under its keys permanently
// undecryptable. The documented order is: drop or migrate the encrypted collections
// first, then reset the vault. The two steps are never chained automatically.
type ResetVaultInput struct {
	// Confirm must equal the key vault namespace ("<database>.<collection>").
	Confirm string
	// DependentCollections lists collections that still hold data encrypted under vault keys.
	DependentCollections []string
	// Force resets the vault even when DependentCollections is not empty.
	Force bool
}
