// Package credentials implements the client's scoped credential storage:
// a small key/value store holding the bearer token and the cached user
// record between runs. Everything in it is wiped on logout.
package credentials

import "context"

// Repository is the storage contract for credential material.
//
// Get returns nil (not an error) when the key is absent, so callers can
// treat "missing" and "empty" uniformly. Clear removes every stored value
// and is idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Well-known keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)
