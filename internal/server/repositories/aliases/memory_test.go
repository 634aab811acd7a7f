package aliases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()

	a := &models.Alias{Slug: "aaaa2222", Token: "FACTSHARE:x", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, a))
	assert.ErrorIs(t, repo.Create(ctx, a), common.ErrorConflict)

	got, err := repo.FindBySlug(ctx, "aaaa2222")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	// Returned values are copies.
	got.Token = "changed"
	again, _ := repo.FindBySlug(ctx, "aaaa2222")
	assert.Equal(t, "FACTSHARE:x", again.Token)

	_, err = repo.FindBySlug(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	later := &models.Alias{Slug: "bbbb3333", Token: "FACTSHARE:x", CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)}
	require.NoError(t, repo.Create(ctx, later))

	act, err := repo.FindActiveByToken(ctx, "FACTSHARE:x", now)
	require.NoError(t, err)
	assert.Equal(t, "bbbb3333", act.Slug)

	_, err = repo.FindActiveByToken(ctx, "FACTSHARE:x", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err := repo.DeleteExpired(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.FindBySlug(ctx, "aaaa2222")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ConcurrentCreateSameSlug(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	exp := time.Now().Add(time.Hour)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &models.Alias{Slug: "same", Token: "FACTSHARE:t", ExpiresAt: exp})
			if err != nil {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 15, conflicts)
}
