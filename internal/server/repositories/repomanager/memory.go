package repomanager

import (
	"context"

	"github.com/dmitrijs2005/factshare/internal/server/repositories/aliases"
)

// MemoryRepositoryManager hands out one shared in-memory repository.
type MemoryRepositoryManager struct {
	repo *aliases.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{repo: aliases.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Aliases() aliases.Repository { return m.repo }
func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Close() error { return nil }
