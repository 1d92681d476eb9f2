// Package store wraps the primitive key-value operations every other
// component builds on. No business logic lives here.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key or set member is absent.
var ErrNotFound = errors.New("store: key not found")

//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock

// Store is the capability set the repository is allowed to use. Mutual
// exclusion is delegated entirely to the store's atomic primitives: SetNX
// for uniqueness claims, HIncrBy for counters.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetNX writes only if the key is absent and reports whether it won.
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error

	SAdd(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SRandMember(ctx context.Context, key string) (string, error)

	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// KeysByPrefix enumerates keys in no particular order; callers that
	// need ordering must sort.
	KeysByPrefix(ctx context.Context, prefix string) ([]string, error)
}
