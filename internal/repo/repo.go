// Package repo is the only component that reads or writes primary records
// and secondary indexes. Uniqueness is enforced with conditional writes on
// the index keys: the SetNX rejection, not a prior existence check, is the
// authoritative conflict signal.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shortlink/internal/apperror"
	"shortlink/internal/store"
)

// Repo implements the entity repository over a Store.
type Repo struct {
	store  store.Store
	hasher Hasher
	now    func() time.Time
}

// Option configures a Repo.
type Option func(*Repo)

// WithHasher swaps the password capability.
func WithHasher(h Hasher) Option {
	return func(r *Repo) { r.hasher = h }
}

// WithClock swaps the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

func New(s store.Store, opts ...Option) *Repo {
	r := &Repo{
		store:  s,
		hasher: BcryptHasher{},
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// getJSON fetches and decodes a record. Absence surfaces as
// store.ErrNotFound; any other store failure as StoreUnavailable.
func (r *Repo) getJSON(ctx context.Context, key string, dst any) error {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return apperror.StoreUnavailable(err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *Repo) setJSON(ctx context.Context, key string, src any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return apperror.StoreUnavailable(err)
	}
	return nil
}
