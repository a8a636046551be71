// Package storage holds the durable key/value backends behind the visitor cart
// snapshots and consent records.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")

// KV is the durable storage contract: one opaque JSON document per key.
// Get returns ErrNotFound for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}
