package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	usecaseMocks "github.com/allisson/fieldvault/internal/schema/usecase/mocks"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
	vaultMocks "github.com/allisson/fieldvault/internal/vault/usecase/mocks"
)

func newTestDriver(
	provisioner ProvisionerUseCase,
	keys KeyResolver,
	concurrency int,
) *driverUseCase {
	d := NewDriverUseCase(provisioner, keys, concurrency, newTestLogger()).(*driverUseCase)
	d.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return d
}

func newTestRegistry(t *testing.T, names ...string) *schemaDomain.Registry {
	t.Helper()
	registry := &schemaDomain.Registry{}
	for _, name := range names {
		registry.Entries = append(registry.Entries, schemaDomain.Entry{
			Name:   name,
			Policy: newTestPolicy(t, map[string]string{"name": "randomized-string"}),
		})
	}
	return registry
}

func TestDriverUseCase_Run(t *testing.T) {
	ctx := context.Background()
	keyID := vaultDomain.NewKeyID()

	t.Run("Success_AllApplied", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)
		registry := newTestRegistry(t, "workspaces", "accounts")

		keys.EXPECT().ResolveKey(ctx).Return(keyID, nil).Once()
		provisioner.EXPECT().Apply(ctx, "workspaces", mock.MatchedBy(func(s *schemaDomain.CompiledSchema) bool {
			return s.KeyID == keyID
		})).Return(schemaDomain.ActionCreated, nil).Once()
		provisioner.EXPECT().Apply(ctx, "accounts", mock.Anything).Return(schemaDomain.ActionUnchanged, nil).Once()

		driver := newTestDriver(provisioner, keys, 1)
		assert.Equal(t, schemaDomain.RunNotStarted, driver.State())

		report, err := driver.Run(ctx, registry)
		require.NoError(t, err)
		require.NotNil(t, report)

		assert.Equal(t, schemaDomain.RunCompleted, report.State)
		assert.Equal(t, schemaDomain.RunCompleted, driver.State())
		assert.Equal(t, keyID, report.KeyID)
		assert.Equal(t, []string{"workspaces"}, report.Applied())
		assert.Equal(t, []string{"accounts"}, report.Unchanged())
		assert.Empty(t, report.Failed())
		assert.NoError(t, report.Err())
		assert.Nil(t, report.Aborted)
	})

	t.Run("Success_FailureIsolatedToOneCollection", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)
		registry := newTestRegistry(t, "a", "b", "c")
		registry.Entries[1].Policy = schemaDomain.EncryptionPolicy{}

		keys.EXPECT().ResolveKey(ctx).Return(keyID, nil).Once()
		provisioner.EXPECT().Apply(ctx, "a", mock.Anything).Return(schemaDomain.ActionCreated, nil).Once()
		provisioner.EXPECT().Apply(ctx, "c", mock.Anything).Return(schemaDomain.ActionCreated, nil).Once()

		report, err := newTestDriver(provisioner, keys, 2).Run(ctx, registry)
		require.NoError(t, err)

		assert.Equal(t, schemaDomain.RunCompletedWithErrors, report.State)
		assert.Equal(t, []string{"a", "c"}, report.Applied())
		require.Len(t, report.Failed(), 1)
		assert.Equal(t, "b", report.Failed()[0].Name)
		assert.ErrorIs(t, report.Failed()[0].Err, schemaDomain.ErrEmptyPolicy)
		assert.ErrorIs(t, report.Err(), schemaDomain.ErrEmptyPolicy)
	})

	t.Run("Success_ApplyErrorDoesNotStopOthers", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)
		registry := newTestRegistry(t, "a", "b", "c")

		keys.EXPECT().ResolveKey(ctx).Return(keyID, nil).Once()
		provisioner.EXPECT().Apply(ctx, "a", mock.Anything).Return(schemaDomain.ActionNone, schemaDomain.ErrProvisionConflict).Once()
		provisioner.EXPECT().Apply(ctx, "b", mock.Anything).Return(schemaDomain.ActionAltered, nil).Once()
		provisioner.EXPECT().Apply(ctx, "c", mock.Anything).Return(schemaDomain.ActionUnchanged, nil).Once()

		report, err := newTestDriver(provisioner, keys, 3).Run(ctx, registry)
		require.NoError(t, err)

		assert.Equal(t, schemaDomain.RunCompletedWithErrors, report.State)
		assert.Equal(t, []string{"b"}, report.Applied())
		assert.Equal(t, []string{"c"}, report.Unchanged())
		require.Len(t, report.Failed(), 1)
		assert.ErrorIs(t, report.Failed()[0].Err, schemaDomain.ErrProvisionConflict)
	})

	t.Run("Success_NoValidEntriesSkipsKeyResolution", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)
		registry := &schemaDomain.Registry{Entries: []schemaDomain.Entry{{Name: "empty"}}}

		report, err := newTestDriver(provisioner, keys, 1).Run(ctx, registry)
		require.NoError(t, err)
		assert.Equal(t, schemaDomain.RunCompletedWithErrors, report.State)
		assert.True(t, report.KeyID.IsZero())
	})

	t.Run("Success_EmptyRegistry", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)

		report, err := newTestDriver(provisioner, keys, 1).Run(ctx, &schemaDomain.Registry{})
		require.NoError(t, err)
		assert.Equal(t, schemaDomain.RunCompleted, report.State)
		assert.Empty(t, report.Results)
	})

	t.Run("Error_KeyResolutionAbortsRun", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)
		registry := newTestRegistry(t, "a", "b")
		kmsErr := errors.New("kms down")

		keys.EXPECT().ResolveKey(ctx).Return(vaultDomain.KeyID{}, kmsErr).Once()

		driver := newTestDriver(provisioner, keys, 2)
		report, err := driver.Run(ctx, registry)

		assert.ErrorIs(t, err, schemaDomain.ErrRunAborted)
		assert.ErrorIs(t, err, kmsErr)
		require.NotNil(t, report)
		assert.Equal(t, schemaDomain.RunCompletedWithErrors, report.State)
		assert.Equal(t, schemaDomain.RunCompletedWithErrors, driver.State())
		assert.Len(t, report.Failed(), 2)
		for _, result := range report.Results {
			assert.ErrorIs(t, result.Err, schemaDomain.ErrRunAborted)
			assert.Equal(t, schemaDomain.ActionNone, result.Action)
		}
	})

	t.Run("Error_DuplicateCollection", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)
		registry := newTestRegistry(t, "a", "a")

		driver := newTestDriver(provisioner, keys, 1)
		report, err := driver.Run(ctx, registry)
		assert.ErrorIs(t, err, schemaDomain.ErrDuplicateCollection)
		assert.Nil(t, report)
		assert.Equal(t, schemaDomain.RunNotStarted, driver.State())
	})

	t.Run("Error_NilRegistry", func(t *testing.T) {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)

		_, err := newTestDriver(provisioner, keys, 1).Run(ctx, nil)
		assert.ErrorIs(t, err, schemaDomain.ErrInvalidRegistry)
	})
}

func TestDriverUseCase_Run_Concurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	keyID := vaultDomain.NewKeyID()
	names := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}

	for _, limit := range []int{1, 3} {
		provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
		keys := usecaseMocks.NewMockKeyResolver(t)

		var inFlight, peak atomic.Int32
		keys.EXPECT().ResolveKey(ctx).Return(keyID, nil).Once()
		provisioner.EXPECT().Apply(ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
			}).
			Return(schemaDomain.ActionCreated, nil).Times(len(names))

		report, err := newTestDriver(provisioner, keys, limit).Run(ctx, newTestRegistry(t, names...))
		require.NoError(t, err)

		assert.LessOrEqual(t, peak.Load(), int32(limit))
		assert.Equal(t, names, report.Applied())
		for i, result := range report.Results {
			assert.Equal(t, names[i], result.Name)
		}
	}
}

func TestDriverUseCase_Run_RerunReusesDataKey(t *testing.T) {
	ctx := context.Background()
	keyID := vaultDomain.NewKeyID()
	ref := newTestMasterKey(t)
	registry := newTestRegistry(t, "workspaces")

	vault := vaultMocks.NewMockKeyVaultUseCase(t)
	provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
	key := &vaultDomain.DataKey{ID: keyID, KeyAltNames: []string{vaultDomain.DefaultDataKeyAltName}}

	// No CreateDataKey expectation: an unconfigured source must never mint an unnamed key.
	vault.EXPECT().EnsureDataKey(ctx, ref, vaultDomain.DefaultDataKeyAltName).Return(key, true, nil).Once()
	vault.EXPECT().EnsureDataKey(ctx, ref, vaultDomain.DefaultDataKeyAltName).Return(key, false, nil).Once()

	bound := mock.MatchedBy(func(s *schemaDomain.CompiledSchema) bool { return s.KeyID == keyID })
	provisioner.EXPECT().Apply(ctx, "workspaces", bound).Return(schemaDomain.ActionCreated, nil).Once()
	provisioner.EXPECT().Apply(ctx, "workspaces", bound).Return(schemaDomain.ActionUnchanged, nil).Once()

	driver := newTestDriver(provisioner, NewKeyResolver(vault, KeySource{MasterKey: ref}, newTestLogger()), 1)

	first, err := driver.Run(ctx, registry)
	require.NoError(t, err)
	assert.Equal(t, []string{"workspaces"}, first.Applied())

	second, err := driver.Run(ctx, registry)
	require.NoError(t, err)
	assert.Equal(t, keyID, second.KeyID)
	assert.Equal(t, first.KeyID, second.KeyID)
	assert.Equal(t, []string{"workspaces"}, second.Unchanged())
	assert.Empty(t, second.Failed())
	assert.Equal(t, schemaDomain.RunCompleted, driver.State())
}

func TestDriverUseCase_Run_RefusesOverlappingRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	keyID := vaultDomain.NewKeyID()
	provisioner := usecaseMocks.NewMockProvisionerUseCase(t)
	keys := usecaseMocks.NewMockKeyResolver(t)
	registry := newTestRegistry(t, "workspaces")

	entered := make(chan struct{})
	release := make(chan struct{})
	keys.EXPECT().ResolveKey(ctx).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(keyID, nil).Once()
	provisioner.EXPECT().Apply(ctx, "workspaces", mock.Anything).Return(schemaDomain.ActionCreated, nil).Once()

	driver := newTestDriver(provisioner, keys, 1)

	done := make(chan error, 1)
	go func() {
		_, err := driver.Run(ctx, registry)
		done <- err
	}()

	<-entered
	report, err := driver.Run(ctx, registry)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, schemaDomain.ErrRunInProgress)
	assert.Equal(t, schemaDomain.RunRunning, driver.State())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, schemaDomain.RunCompleted, driver.State())
}

func TestNewDriverUseCase_ClampsConcurrency(t *testing.T) {
	d := NewDriverUseCase(nil, nil, 0, newTestLogger()).(*driverUseCase)
	assert.Equal(t, 1, d.concurrency)
}
