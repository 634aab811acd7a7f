// Package aliases declares the alias registry storage contract and its
// PostgreSQL, Redis and in-memory implementations.
package aliases

import (
	"context"
	"time"

	"github.com/dmitrijs2005/factshare/internal/server/models"
)

// Repository stores alias records. Slugs are unique: Create reports
// common.ErrorConflict when the slug is taken. Lookups report
// common.ErrorNotFound for absent rows.
type Repository interface {
	Create(ctx context.Context, a *models.Alias) error

	// FindBySlug returns the alias regardless of expiry; callers decide.
	FindBySlug(ctx context.Context, slug string) (*models.Alias, error)

	// FindActiveByToken returns the alias for token with the latest expiry
	// that is still active at now.
	FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.Alias, error)

	// DeleteExpired removes aliases whose expiry is not after now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
