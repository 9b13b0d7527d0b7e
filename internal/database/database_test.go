package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestConnect_Error(t *testing.T) {
	t.Run("empty uri", func(t *testing.T) {
		client, err := Connect(context.Background(), Config{})
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "empty store URI")
	})

	t.Run("invalid uri scheme", func(t *testing.T) {
		client, err := Connect(context.Background(), Config{URI: "postgres://localhost", Timeout: time.Second})
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to open store client")
	})
}

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline exceeded", err: fmt.Errorf("ping: %w", context.DeadlineExceeded), want: true},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "command error", err: mongo.CommandError{Code: 2, Message: "bad value"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnavailable(tt.err))
		})
	}
}

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, IsDuplicateKey(dup))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", dup)))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
}

func TestNamespaceCodes(t *testing.T) {
	exists := mongo.CommandError{Code: 48, Name: "NamespaceExists"}
	notFound := mongo.CommandError{Code: 26, Name: "NamespaceNotFound"}

	assert.True(t, IsNamespaceExists(exists))
	assert.True(t, IsNamespaceExists(fmt.Errorf("create: %w", exists)))
	assert.False(t, IsNamespaceExists(notFound))

	assert.True(t, IsNamespaceNotFound(notFound))
	assert.False(t, IsNamespaceNotFound(exists))
	assert.False(t, IsNamespaceNotFound(errors.New("boom")))
}
