// Package database provides document store connection management and driver error classification.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// Server error codes the repositories branch on.
const (
	codeNamespaceNotFound int32 = 26
	codeNamespaceExists   int32 = 48
)

// Config holds document store configuration settings.
type Config struct {
	URI     string
	AppName string
	Timeout time.Duration
}

// Connect establishes a client connection with the given configuration and verifies
// that the primary is reachable.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("empty store URI")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	return client, nil
}

// IsUnavailable reports whether err is a transient connectivity failure.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsNamespaceExists reports whether err was raised because a collection already exists.
func IsNamespaceExists(err error) bool {
	return hasCode(err, codeNamespaceExists)
}

// IsNamespaceNotFound reports whether err was raised because a collection does not exist.
func IsNamespaceNotFound(err error) bool {
	return hasCode(err, codeNamespaceNotFound)
}

func hasCode(err error, code int32) bool {
	var cmdErr mongo.CommandError
	if apperrors.As(err, &cmdErr) {
		return cmdErr.Code == code
	}
	return false
}
