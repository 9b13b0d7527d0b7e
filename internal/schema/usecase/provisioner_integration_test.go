package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	schemaRepository "github.com/allisson/fieldvault/internal/schema/repository"
	schemaService "github.com/allisson/fieldvault/internal/schema/service"
	"github.com/allisson/fieldvault/internal/schema/usecase"
	"github.com/allisson/fieldvault/internal/testutil"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

func TestProvisionerUseCase_Apply_Idempotent(t *testing.T) {
	_, db := testutil.SetupMongoDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provisioner := usecase.NewProvisionerUseCase(schemaRepository.NewMongoCollectionRepository(db), logger)

	name, err := schemaDomain.ParseFieldSpec("name", "randomized-string")
	require.NoError(t, err)
	keyID := vaultDomain.NewKeyID()
	schema, err := schemaService.Compile(schemaDomain.EncryptionPolicy{
		Fields: []schemaDomain.FieldPolicy{name},
	}, keyID)
	require.NoError(t, err)

	action, err := provisioner.Apply(ctx, "workspaces", schema)
	require.NoError(t, err)
	assert.Equal(t, schemaDomain.ActionCreated, action)

	action, err = provisioner.Apply(ctx, "workspaces", schema)
	require.NoError(t, err)
	assert.Equal(t, schemaDomain.ActionUnchanged, action)

	email, err := schemaDomain.ParseFieldSpec("email", "deterministic-string")
	require.NoError(t, err)
	extended, err := schemaService.Compile(schemaDomain.EncryptionPolicy{
		Fields: []schemaDomain.FieldPolicy{name, email},
	}, keyID)
	require.NoError(t, err)

	action, err = provisioner.Apply(ctx, "workspaces", extended)
	require.NoError(t, err)
	assert.Equal(t, schemaDomain.ActionAltered, action)

	rotated, err := schemaService.Compile(schemaDomain.EncryptionPolicy{
		Fields: []schemaDomain.FieldPolicy{name, email},
	}, vaultDomain.NewKeyID())
	require.NoError(t, err)

	_, err = provisioner.Apply(ctx, "workspaces", rotated)
	assert.ErrorIs(t, err, schemaDomain.ErrProvisionConflict)

	existing, err := provisioner.ExistingCollections(ctx, []string{"workspaces", "missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"workspaces"}, existing)
}
