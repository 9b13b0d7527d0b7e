// Package mocks provides mock implementations of the key vault use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockKeyVaultRepository is a mock implementation of KeyVaultRepository.
type MockKeyVaultRepository struct {
	mock.Mock
}

// MockKeyVaultRepository_Expecter gives typed access to expectation setup.
type MockKeyVaultRepository_Expecter struct {
	mock *mock.Mock
}

// NewMockKeyVaultRepository creates a mock whose expectations are asserted on cleanup.
func NewMockKeyVaultRepository(t testingT) *MockKeyVaultRepository {
	m := &MockKeyVaultRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter for m.
func (m *MockKeyVaultRepository) EXPECT() *MockKeyVaultRepository_Expecter {
	return &MockKeyVaultRepository_Expecter{mock: &m.Mock}
}

// EnsureIndex mocks EnsureIndex.
func (m *MockKeyVaultRepository) EnsureIndex(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// EnsureIndex sets up an expectation for EnsureIndex.
func (e *MockKeyVaultRepository_Expecter) EnsureIndex(ctx any) *mock.Call {
	return e.mock.On("EnsureIndex", ctx)
}

// Create mocks Create.
func (m *MockKeyVaultRepository) Create(ctx context.Context, key *vaultDomain.DataKey) error {
	return m.Called(ctx, key).Error(0)
}

// Create sets up an expectation for Create.
func (e *MockKeyVaultRepository_Expecter) Create(ctx, key any) *mock.Call {
	return e.mock.On("Create", ctx, key)
}

// Get mocks Get.
func (m *MockKeyVaultRepository) Get(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.DataKey), args.Error(1)
}

// Get sets up an expectation for Get.
func (e *MockKeyVaultRepository_Expecter) Get(ctx, id any) *mock.Call {
	return e.mock.On("Get", ctx, id)
}

// GetByAltName mocks GetByAltName.
func (m *MockKeyVaultRepository) GetByAltName(ctx context.Context, name string) (*vaultDomain.DataKey, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.DataKey), args.Error(1)
}

// GetByAltName sets up an expectation for GetByAltName.
func (e *MockKeyVaultRepository_Expecter) GetByAltName(ctx, name any) *mock.Call {
	return e.mock.On("GetByAltName", ctx, name)
}

// List mocks List.
func (m *MockKeyVaultRepository) List(ctx context.Context) ([]*vaultDomain.DataKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.DataKey), args.Error(1)
}

// List sets up an expectation for List.
func (e *MockKeyVaultRepository_Expecter) List(ctx any) *mock.Call {
	return e.mock.On("List", ctx)
}

// Drop mocks Drop.
func (m *MockKeyVaultRepository) Drop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Drop sets up an expectation for Drop.
func (e *MockKeyVaultRepository_Expecter) Drop(ctx any) *mock.Call {
	return e.mock.On("Drop", ctx)
}

// Namespace mocks Namespace.
func (m *MockKeyVaultRepository) Namespace() string {
	return m.Called().String(0)
}

// Namespace sets up an expectation for Namespace.
func (e *MockKeyVaultRepository_Expecter) Namespace() *mock.Call {
	return e.mock.On("Namespace")
}

// MockKeyVaultUseCase is a mock implementation of KeyVaultUseCase.
type MockKeyVaultUseCase struct {
	mock.Mock
}

// MockKeyVaultUseCase_Expecter gives typed access to expectation setup.
type MockKeyVaultUseCase_Expecter struct {
	mock *mock.Mock
}

// NewMockKeyVaultUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockKeyVaultUseCase(t testingT) *MockKeyVaultUseCase {
	m := &MockKeyVaultUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter for m.
func (m *MockKeyVaultUseCase) EXPECT() *MockKeyVaultUseCase_Expecter {
	return &MockKeyVaultUseCase_Expecter{mock: &m.Mock}
}

// InitializeVault mocks InitializeVault.
func (m *MockKeyVaultUseCase) InitializeVault(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// InitializeVault sets up an expectation for InitializeVault.
func (e *MockKeyVaultUseCase_Expecter) InitializeVault(ctx any) *mock.Call {
	return e.mock.On("InitializeVault", ctx)
}

// ResetVault mocks ResetVault.
func (m *MockKeyVaultUseCase) ResetVault(ctx context.Context, input *vaultDomain.ResetVaultInput) error {
	return m.Called(ctx, input).Error(0)
}

// ResetVault sets up an expectation for ResetVault.
func (e *MockKeyVaultUseCase_Expecter) ResetVault(ctx, input any) *mock.Call {
	return e.mock.On("ResetVault", ctx, input)
}

// CreateDataKey mocks CreateDataKey.
func (m *MockKeyVaultUseCase) CreateDataKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	altNames []string,
) (*vaultDomain.DataKey, error) {
	args := m.Called(ctx, ref, altNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.DataKey), args.Error(1)
}

// CreateDataKey sets up an expectation for CreateDataKey.
func (e *MockKeyVaultUseCase_Expecter) CreateDataKey(ctx, ref, altNames any) *mock.Call {
	return e.mock.On("CreateDataKey", ctx, ref, altNames)
}

// EnsureDataKey mocks EnsureDataKey.
func (m *MockKeyVaultUseCase) EnsureDataKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	altName string,
) (*vaultDomain.DataKey, bool, error) {
	args := m.Called(ctx, ref, altName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*vaultDomain.DataKey), args.Bool(1), args.Error(2)
}

// EnsureDataKey sets up an expectation for EnsureDataKey.
func (e *MockKeyVaultUseCase_Expecter) EnsureDataKey(ctx, ref, altName any) *mock.Call {
	return e.mock.On("EnsureDataKey", ctx, ref, altName)
}

// GetDataKey mocks GetDataKey.
func (m *MockKeyVaultUseCase) GetDataKey(ctx context.Context, id vaultDomain.KeyID) (*vaultDomain.DataKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.DataKey), args.Error(1)
}

// GetDataKey sets up an expectation for GetDataKey.
func (e *MockKeyVaultUseCase_Expecter) GetDataKey(ctx, id any) *mock.Call {
	return e.mock.On("GetDataKey", ctx, id)
}

// ListDataKeys mocks ListDataKeys.
func (m *MockKeyVaultUseCase) ListDataKeys(ctx context.Context) ([]*vaultDomain.DataKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.DataKey), args.Error(1)
}

// ListDataKeys sets up an expectation for ListDataKeys.
func (e *MockKeyVaultUseCase_Expecter) ListDataKeys(ctx any) *mock.Call {
	return e.mock.On("ListDataKeys", ctx)
}

// VerifyDataKey mocks VerifyDataKey.
func (m *MockKeyVaultUseCase) VerifyDataKey(
	ctx context.Context,
	id vaultDomain.KeyID,
) (*vaultDomain.DataKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.DataKey), args.Error(1)
}

// VerifyDataKey sets up an expectation for VerifyDataKey.
func (e *MockKeyVaultUseCase_Expecter) VerifyDataKey(ctx, id any) *mock.Call {
	return e.mock.On("VerifyDataKey", ctx, id)
}
