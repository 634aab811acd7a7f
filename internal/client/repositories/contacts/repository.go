// Package contacts persists the local contact book.
package contacts

import (
	"context"

	"github.com/dmitrijs2005/factshare/internal/client/models"
)

type Repository interface {
	GetAll(ctx context.Context) ([]models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	GetByRemoteID(ctx context.Context, remoteID string) (*models.Contact, error)
	// Save inserts c or replaces the stored contact with the same id.
	Save(ctx context.Context, c *models.Contact) error
	DeleteByID(ctx context.Context, id string) error
}
