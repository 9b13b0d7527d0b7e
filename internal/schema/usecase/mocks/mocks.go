// Package mocks provides mock implementations of the schema use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"

	schemaDomain "github.com/allisson/fieldvault/internal/schema/domain"
	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockCollectionRepository is a mock implementation of CollectionRepository.
type MockCollectionRepository struct {
	mock.Mock
}

// MockCollectionRepository_Expecter gives typed access to expectation setup.
type MockCollectionRepository_Expecter struct {
	mock *mock.Mock
}

// NewMockCollectionRepository creates a mock whose expectations are asserted on cleanup.
func NewMockCollectionRepository(t testingT) *MockCollectionRepository {
	m := &MockCollectionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter for m.
func (m *MockCollectionRepository) EXPECT() *MockCollectionRepository_Expecter {
	return &MockCollectionRepository_Expecter{mock: &m.Mock}
}

// Database mocks Database.
func (m *MockCollectionRepository) Database() string {
	return m.Called().String(0)
}

// Database sets up an expectation for Database.
func (e *MockCollectionRepository_Expecter) Database() *mock.Call {
	return e.mock.On("Database")
}

// Inspect mocks Inspect.
func (m *MockCollectionRepository) Inspect(ctx context.Context, name string) (*schemaDomain.CollectionState, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemaDomain.CollectionState), args.Error(1)
}

// Inspect sets up an expectation for Inspect.
func (e *MockCollectionRepository_Expecter) Inspect(ctx, name any) *mock.Call {
	return e.mock.On("Inspect", ctx, name)
}

// Create mocks Create.
func (m *MockCollectionRepository) Create(ctx context.Context, name string, validator bson.D) error {
	return m.Called(ctx, name, validator).Error(0)
}

// Create sets up an expectation for Create.
func (e *MockCollectionRepository_Expecter) Create(ctx, name, validator any) *mock.Call {
	return e.mock.On("Create", ctx, name, validator)
}

// UpdateValidator mocks UpdateValidator.
func (m *MockCollectionRepository) UpdateValidator(ctx context.Context, name string, validator bson.D) error {
	return m.Called(ctx, name, validator).Error(0)
}

// UpdateValidator sets up an expectation for UpdateValidator.
func (e *MockCollectionRepository_Expecter) UpdateValidator(ctx, name, validator any) *mock.Call {
	return e.mock.On("UpdateValidator", ctx, name, validator)
}

// Drop mocks Drop.
func (m *MockCollectionRepository) Drop(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Drop sets up an expectation for Drop.
func (e *MockCollectionRepository_Expecter) Drop(ctx, name any) *mock.Call {
	return e.mock.On("Drop", ctx, name)
}

// MockKeyResolver is a mock implementation of KeyResolver.
type MockKeyResolver struct {
	mock.Mock
}

// MockKeyResolver_Expecter gives typed access to expectation setup.
type MockKeyResolver_Expecter struct {
	mock *mock.Mock
}

// NewMockKeyResolver creates a mock whose expectations are asserted on cleanup.
func NewMockKeyResolver(t testingT) *MockKeyResolver {
	m := &MockKeyResolver{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter for m.
func (m *MockKeyResolver) EXPECT() *MockKeyResolver_Expecter {
	return &MockKeyResolver_Expecter{mock: &m.Mock}
}

// ResolveKey mocks ResolveKey.
func (m *MockKeyResolver) ResolveKey(ctx context.Context) (vaultDomain.KeyID, error) {
	args := m.Called(ctx)
	return args.Get(0).(vaultDomain.KeyID), args.Error(1)
}

// ResolveKey sets up an expectation for ResolveKey.
func (e *MockKeyResolver_Expecter) ResolveKey(ctx any) *mock.Call {
	return e.mock.On("ResolveKey", ctx)
}

// MockProvisionerUseCase is a mock implementation of ProvisionerUseCase.
type MockProvisionerUseCase struct {
	mock.Mock
}

// MockProvisionerUseCase_Expecter gives typed access to expectation setup.
type MockProvisionerUseCase_Expecter struct {
	mock *mock.Mock
}

// NewMockProvisionerUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockProvisionerUseCase(t testingT) *MockProvisionerUseCase {
	m := &MockProvisionerUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter for m.
func (m *MockProvisionerUseCase) EXPECT() *MockProvisionerUseCase_Expecter {
	return &MockProvisionerUseCase_Expecter{mock: &m.Mock}
}

// Apply mocks Apply.
func (m *MockProvisionerUseCase) Apply(
	ctx context.Context,
	name string,
	schema *schemaDomain.CompiledSchema,
) (schemaDomain.ProvisionAction, error) {
	args := m.Called(ctx, name, schema)
	return args.Get(0).(schemaDomain.ProvisionAction), args.Error(1)
}

// Apply sets up an expectation for Apply.
func (e *MockProvisionerUseCase_Expecter) Apply(ctx, name, schema any) *mock.Call {
	return e.mock.On("Apply", ctx, name, schema)
}

// ExistingCollections mocks ExistingCollections.
func (m *MockProvisionerUseCase) ExistingCollections(ctx context.Context, names []string) ([]string, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// ExistingCollections sets up an expectation for ExistingCollections.
func (e *MockProvisionerUseCase_Expecter) ExistingCollections(ctx, names any) *mock.Call {
	return e.mock.On("ExistingCollections", ctx, names)
}

// DropCollections mocks DropCollections.
func (m *MockProvisionerUseCase) DropCollections(
	ctx context.Context,
	input *schemaDomain.DropCollectionsInput,
) ([]string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// DropCollections sets up an expectation for DropCollections.
func (e *MockProvisionerUseCase_Expecter) DropCollections(ctx, input any) *mock.Call {
	return e.mock.On("DropCollections", ctx, input)
}

// MockDriverUseCase is a mock implementation of DriverUseCase.
type MockDriverUseCase struct {
	mock.Mock
}

// MockDriverUseCase_Expecter gives typed access to expectation setup.
type MockDriverUseCase_Expecter struct {
	mock *mock.Mock
}

// NewMockDriverUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockDriverUseCase(t testingT) *MockDriverUseCase {
	m := &MockDriverUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter for m.
func (m *MockDriverUseCase) EXPECT() *MockDriverUseCase_Expecter {
	return &MockDriverUseCase_Expecter{mock: &m.Mock}
}

// Run mocks Run.
func (m *MockDriverUseCase) Run(
	ctx context.Context,
	registry *schemaDomain.Registry,
) (*schemaDomain.Report, error) {
	args := m.Called(ctx, registry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemaDomain.Report), args.Error(1)
}

// Run sets up an expectation for Run.
func (e *MockDriverUseCase_Expecter) Run(ctx, registry any) *mock.Call {
	return e.mock.On("Run", ctx, registry)
}

// State mocks State.
func (m *MockDriverUseCase) State() schemaDomain.RunState {
	return m.Called().Get(0).(schemaDomain.RunState)
}

// State sets up an expectation for State.
func (e *MockDriverUseCase_Expecter) State() *mock.Call {
	return e.mock.On("State")
}
