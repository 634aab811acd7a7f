// Package metadata stores small key/value settings of the local client,
// such as the stable owner id used in outgoing shares.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyOwnerID    = "owner_id"
	KeyLastBackup = "last_backup"
)

type Repository interface {
	// Get returns common.ErrorNotFound for an unknown key.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// GetOrCreate returns the stored value, storing gen() first when the key
	// is absent. Concurrent callers observe the same value.
	GetOrCreate(ctx context.Context, key string, gen func() string) (string, error)
	List(ctx context.Context) (map[string]string, error)
}
