// Package cache stores small per-client string values: the session token and
// the UI preferences that a browser would otherwise keep in local storage.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache: key not found")

// Cache defines the interface for caching services.
// A zero expiration keeps the value until it is deleted.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
