package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNewMasterKeyReference(t *testing.T) {
	gcpLocator := map[string]string{
		LocatorProjectID: "p1",
		LocatorLocation:  "global",
		LocatorKeyRing:   "ring",
		LocatorKeyName:   "key",
	}

	tests := []struct {
		name     string
		provider string
		locator  map[string]string
		wantErr  bool
	}{
		{name: "local without locator", provider: "local", locator: nil},
		{name: "gcp complete", provider: "gcp", locator: gcpLocator},
		{name: "gcp missing key ring", provider: "gcp", locator: map[string]string{
			LocatorProjectID: "p1", LocatorLocation: "global", LocatorKeyName: "key",
		}, wantErr: true},
		{name: "gcp empty value", provider: "gcp", locator: map[string]string{
			LocatorProjectID: "p1", LocatorLocation: "global", LocatorKeyRing: "", LocatorKeyName: "key",
		}, wantErr: true},
		{name: "aws complete", provider: "aws", locator: map[string]string{
			LocatorRegion: "us-east-1", LocatorKey: "arn:aws:kms:us-east-1:123:key/abc",
		}},
		{name: "azure complete with extra keys", provider: "azure", locator: map[string]string{
			LocatorKeyVaultEndpoint: "vault.vault.azure.net", LocatorKeyName: "k", "unused": "x",
		}},
		{name: "unknown provider", provider: "kmip", locator: nil, wantErr: true},
		{name: "empty provider", provider: "", locator: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewMasterKeyReference(tt.provider, tt.locator)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMasterKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Provider(tt.provider), ref.Provider)
		})
	}
}

func TestNewMasterKeyReference_CopiesLocator(t *testing.T) {
	locator := map[string]string{LocatorRegion: "us-east-1", LocatorKey: "alias/app"}
	ref, err := NewMasterKeyReference("aws", locator)
	require.NoError(t, err)

	locator[LocatorRegion] = "eu-west-1"
	assert.Equal(t, "us-east-1", ref.Get(LocatorRegion))
}

func TestMasterKeyReference_Document(t *testing.T) {
	ref := MasterKeyReference{
		Provider: ProviderGCP,
		Locator: map[string]string{
			LocatorProjectID: "p1",
			LocatorLocation:  "global",
			LocatorKeyRing:   "ring",
			LocatorKeyName:   "key",
		},
	}

	want := bson.D{
		{Key: "provider", Value: "gcp"},
		{Key: "keyName", Value: "key"},
		{Key: "keyRing", Value: "ring"},
		{Key: "location", Value: "global"},
		{Key: "projectId", Value: "p1"},
	}
	assert.Equal(t, want, ref.Document())
	assert.Equal(t, bson.D{{Key: "provider", Value: "local"}}, MasterKeyReference{Provider: ProviderLocal}.Document())
}

func TestDataKey_HasAltName(t *testing.T) {
	dk := &DataKey{KeyAltNames: []string{"a", "b"}}
	assert.True(t, dk.HasAltName("b"))
	assert.False(t, dk.HasAltName("c"))
	assert.False(t, (&DataKey{}).HasAltName("a"))
}
