// Package mocks provides mock implementations of the vault service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// MockKMSConnector is a mock implementation of KMSConnector for testing.
type MockKMSConnector struct {
	mock.Mock
}

// MockKMSConnector_Expecter gives typed access to expectation setup.
type MockKMSConnector_Expecter struct {
	mock *mock.Mock
}

// NewMockKMSConnector creates a MockKMSConnector whose expectations are asserted on cleanup.
func NewMockKMSConnector(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockKMSConnector {
	m := &MockKMSConnector{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EXPECT returns the expecter for m.
func (m *MockKMSConnector) EXPECT() *MockKMSConnector_Expecter {
	return &MockKMSConnector_Expecter{mock: &m.Mock}
}

// WrapKey mocks the WrapKey method of KMSConnector.
func (m *MockKMSConnector) WrapKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	plaintext []byte,
) ([]byte, error) {
	args := m.Called(ctx, ref, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// WrapKey sets up an expectation for WrapKey.
func (e *MockKMSConnector_Expecter) WrapKey(ctx, ref, plaintext any) *mock.Call {
	return e.mock.On("WrapKey", ctx, ref, plaintext)
}

// UnwrapKey mocks the UnwrapKey method of KMSConnector.
func (m *MockKMSConnector) UnwrapKey(
	ctx context.Context,
	ref vaultDomain.MasterKeyReference,
	wrapped []byte,
) ([]byte, error) {
	args := m.Called(ctx, ref, wrapped)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// UnwrapKey sets up an expectation for UnwrapKey.
func (e *MockKMSConnector_Expecter) UnwrapKey(ctx, ref, wrapped any) *mock.Call {
	return e.mock.On("UnwrapKey", ctx, ref, wrapped)
}

// Close mocks the Close method of KMSConnector.
func (m *MockKMSConnector) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Close sets up an expectation for Close.
func (e *MockKMSConnector_Expecter) Close() *mock.Call {
	return e.mock.On("Close")
}
