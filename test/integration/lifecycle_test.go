// Package integration provides end-to-end tests of the key vault and schema provisioning
// lifecycle against a real document store, driven through the CLI command layer.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/allisson/fieldvault/cmd/app/commands"
	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	"github.com/allisson/fieldvault/internal/testutil"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

const testRegistry = `
collections:
  - name: accounts
    fields:
      - path: email
        spec: deterministic-string
      - path: profile.ssn
        spec: randomized-string
  - name: payments
    fields:
      - path: card.number
        spec: randomized-string
`

// integrationTestContext holds the container and the database a lifecycle test runs on.
type integrationTestContext struct {
	container *app.Container
	db        *mongo.Database
	cfg       *config.Config
}

// generateLocalKey returns a fresh base64-encoded 32-byte local master key.
func generateLocalKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err, "failed to generate local master key")
	return base64.StdEncoding.EncodeToString(key)
}

// setupIntegrationTest builds a container pointed at a fresh database with the local KMS.
func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()

	_, db := testutil.SetupMongoDB(t)

	registryPath := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(registryPath, []byte(testRegistry), 0o600))

	cfg := &config.Config{
		StoreURI:             testutil.GetMongoTestURI(),
		StoreTimeout:         5 * time.Second,
		DBName:               db.Name(),
		KeyVaultNamespace:    db.Name() + ".__keyVault",
		KMSProvider:          string(vaultDomain.ProviderLocal),
		KMSCredentials:       config.KMSCredentials{LocalKey: generateLocalKey(t)},
		DataKeyAltName:       "lifecycle",
		RegistryPath:         registryPath,
		ProvisionConcurrency: 2,
		LogLevel:             "error",
		MetricsNamespace:     "fieldvault",
	}
	require.NoError(t, cfg.Validate())

	container := app.NewContainer(cfg)
	t.Cleanup(func() {
		if err := container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	})

	return &integrationTestContext{container: container, db: db, cfg: cfg}
}

func TestIntegration_VaultAndSchemaLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupIntegrationTest(t)
	ctx := context.Background()
	logger := tc.container.Logger()

	keyVault, err := tc.container.KeyVaultUseCase()
	require.NoError(t, err)
	masterKey, err := tc.container.MasterKey()
	require.NoError(t, err)
	provisioner, err := tc.container.ProvisionerUseCase()
	require.NoError(t, err)
	driver, err := tc.container.DriverUseCase()
	require.NoError(t, err)
	registry, err := tc.container.Registry()
	require.NoError(t, err)

	var keyID vaultDomain.KeyID

	t.Run("01_InitVault", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunInitVault(ctx, keyVault, logger, &out))
		// Idempotent on every deploy.
		require.NoError(t, commands.RunInitVault(ctx, keyVault, logger, &out))
	})

	t.Run("02_MakeDataKey", func(t *testing.T) {
		var out bytes.Buffer
		err := commands.RunMakeDataKey(ctx, keyVault, masterKey, logger, &out, []string{"lifecycle"}, "text")
		require.NoError(t, err)

		keyID, err = vaultDomain.ParseKeyID(strings.TrimSpace(out.String()))
		require.NoError(t, err)
	})

	t.Run("03_MakeDataKey_DuplicateAltName", func(t *testing.T) {
		err := commands.RunMakeDataKey(ctx, keyVault, masterKey, logger, &bytes.Buffer{}, []string{"lifecycle"}, "text")
		assert.ErrorIs(t, err, vaultDomain.ErrDuplicateKeyName)
	})

	t.Run("04_ConfigureSchema_Creates", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunConfigureSchema(ctx, driver, registry, logger, &out, "json"))

		var view struct {
			State       string `json:"state"`
			KeyID       string `json:"key_id"`
			Collections []struct {
				Name   string `json:"name"`
				Status string `json:"status"`
				Action string `json:"action"`
			} `json:"collections"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &view))
		assert.Equal(t, "Completed", view.State)
		assert.Equal(t, keyID.String(), view.KeyID, "run resolves the key by alternate name")
		require.Len(t, view.Collections, 2)
		for _, c := range view.Collections {
			assert.Equal(t, "created", c.Action, c.Name)
		}

		specs, err := tc.db.ListCollectionSpecifications(ctx, bson.D{{Key: "name", Value: "accounts"}})
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.Contains(t, specs[0].Options.String(), "$jsonSchema")
	})

	t.Run("05_ConfigureSchema_Unchanged", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunConfigureSchema(ctx, driver, registry, logger, &out, "text"))
		assert.Contains(t, out.String(), "no-op    accounts (unchanged)")
		assert.Contains(t, out.String(), "no-op    payments (unchanged)")
	})

	t.Run("06_CompileSchema_MatchesLiveValidator", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunCompileSchema(registry, &out, keyID.String(), "accounts", "text"))
		assert.Contains(t, out.String(), keyID.String())
	})

	t.Run("07_VerifyDataKey", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunVerifyDataKey(ctx, keyVault, logger, &out, keyID.String(), "text"))
		assert.Contains(t, out.String(), "verified with local master key")
	})

	t.Run("08_ListDataKeys", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunListDataKeys(ctx, keyVault, logger, &out, "json"))

		var keys []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &keys))
		require.Len(t, keys, 1)
		assert.Equal(t, keyID.String(), keys[0]["key_id"])
	})

	t.Run("09_ResetVault_RefusedWhileCollectionsExist", func(t *testing.T) {
		err := commands.RunResetVault(ctx, keyVault, provisioner, registry, logger, &bytes.Buffer{},
			tc.cfg.KeyVaultNamespace, false)
		assert.ErrorIs(t, err, vaultDomain.ErrDependentDataPresent)
	})

	t.Run("10_DropEncryptedData_NotConfirmed", func(t *testing.T) {
		err := commands.RunDropEncryptedData(ctx, provisioner, registry, logger, &bytes.Buffer{}, "wrong")
		assert.ErrorIs(t, err, schemaDomain.ErrDropNotConfirmed)
	})

	t.Run("11_DropEncryptedData", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunDropEncryptedData(ctx, provisioner, registry, logger, &out, tc.db.Name()))
		assert.Equal(t, "Dropped accounts\nDropped payments\n", out.String())
	})

	t.Run("12_ResetVault", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunResetVault(ctx, keyVault, provisioner, registry, logger, &out,
			tc.cfg.KeyVaultNamespace, false))
		assert.Contains(t, out.String(), "Key vault reset")
	})

	t.Run("13_ListDataKeys_Empty", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, commands.RunListDataKeys(ctx, keyVault, logger, &out, "text"))
		assert.Contains(t, out.String(), "No data keys found")
	})
}
