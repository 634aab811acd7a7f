package repomanager

import (
	"context"

	"github.com/dmitrijs2005/factshare/internal/server/repositories/aliases"
)

// RepositoryManager vends the alias repository for one storage backend and
// prepares that backend for use.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Aliases() aliases.Repository
	Close() error
}
