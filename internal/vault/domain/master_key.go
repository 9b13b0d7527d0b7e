package domain

import (
	"fmt"
	"sort"

	validation "github.com/jellydator/validation"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Provider is the tag of an external KMS that holds master keys.
type Provider string

const (
	// ProviderLocal wraps data keys with a locally supplied 32-byte key (secretbox).
	// The storage driver cannot unwrap that format, so it is for development and tests only.
	ProviderLocal Provider = "local"
	// ProviderGCP wraps data keys with a Google Cloud KMS crypto key.
	ProviderGCP Provider = "gcp"
	// ProviderAWS wraps data keys with an AWS KMS key.
	ProviderAWS Provider = "aws"
	// ProviderAzure wraps data keys with an Azure Key Vault key.
	ProviderAzure Provider = "azure"
)

// Locator field names, matching the masterKey layout of key vault documents.
const (
	LocatorProjectID        = "projectId"
	LocatorLocation         = "location"
	LocatorKeyRing          = "keyRing"
	LocatorKeyName          = "keyName"
	LocatorKeyVersion       = "keyVersion"
	LocatorRegion           = "region"
	LocatorKey              = "key"
	LocatorEndpoint         = "endpoint"
	LocatorKeyVaultEndpoint = "keyVaultEndpoint"
)

// requiredLocator lists, per provider, the locator fields a reference must carry.
var requiredLocator = map[Provider][]string{
	ProviderLocal: {},
	ProviderGCP:   {LocatorProjectID, LocatorLocation, LocatorKeyRing, LocatorKeyName},
	ProviderAWS:   {LocatorRegion, LocatorKey},
	ProviderAzure: {LocatorKeyVaultEndpoint, LocatorKeyName},
}

// MasterKeyReference identifies a master key held by an external KMS. It is supplied by
// configuration and never generated here.
type MasterKeyReference struct {
	Provider Provider
	Locator  map[string]string
}

// NewMasterKeyReference builds and validates a reference.
func NewMasterKeyReference(provider string, locator map[string]string) (MasterKeyReference, error) {
	ref := MasterKeyReference{Provider: Provider(provider), Locator: make(map[string]string, len(locator))}
	for k, v := range locator {
		ref.Locator[k] = v
	}
	if err := ref.Validate(); err != nil {
		return MasterKeyReference{}, err
	}
	return ref, nil
}

// Validate checks that the provider is supported and every required locator field is present.
func (m MasterKeyReference) Validate() error {
	err := validation.Validate(string(m.Provider),
		validation.Required,
		validation.In(string(ProviderLocal), string(ProviderGCP), string(ProviderAWS), string(ProviderAzure)),
	)
	if err != nil {
		return fmt.Errorf("%w: provider %q: %v", ErrInvalidMasterKey, m.Provider, err)
	}

	keys := make([]*validation.KeyRules, 0, len(requiredLocator[m.Provider]))
	for _, field := range requiredLocator[m.Provider] {
		keys = append(keys, validation.Key(field, validation.Required))
	}
	locator := m.Locator
	if locator == nil {
		locator = map[string]string{}
	}
	if err := validation.Validate(locator, validation.Map(keys...).AllowExtraKeys()); err != nil {
		return fmt.Errorf("%w: %s locator: %v", ErrInvalidMasterKey, m.Provider, err)
	}
	return nil
}

// Get returns a locator field, or "" when absent.
func (m MasterKeyReference) Get(field string) string {
	return m.Locator[field]
}

// Document renders the reference as the masterKey sub-document stored with each data key:
// the provider tag followed by the locator fields in sorted order.
func (m MasterKeyReference) Document() bson.D {
	keys := make([]string, 0, len(m.Locator))
	for k := range m.Locator {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := bson.D{{Key: "provider", Value: string(m.Provider)}}
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: m.Locator[k]})
	}
	return doc
}
