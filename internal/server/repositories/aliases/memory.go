package aliases

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/server/models"
)

// MemoryRepository keeps aliases in process memory. Data is lost on restart.
type MemoryRepository struct {
	mu     sync.RWMutex
	bySlug map[string]models.Alias
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bySlug: make(map[string]models.Alias)}
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Alias) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySlug[a.Slug]; ok {
		return common.ErrorConflict
	}
	r.bySlug[a.Slug] = *a
	return nil
}

func (r *MemoryRepository) FindBySlug(_ context.Context, slug string) (*models.Alias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySlug[slug]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) FindActiveByToken(_ context.Context, token string, now time.Time) (*models.Alias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *models.Alias
	for _, a := range r.bySlug {
		if a.Token != token || !a.Active(now) {
			continue
		}
		if best == nil || a.ExpiresAt.After(best.ExpiresAt) {
			a := a
			best = &a
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best, nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for slug, a := range r.bySlug {
		if !a.Active(now) {
			delete(r.bySlug, slug)
			n++
		}
	}
	return n, nil
}
