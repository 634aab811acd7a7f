package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/server/config"
	"github.com/dmitrijs2005/factshare/internal/server/metrics"
	"github.com/dmitrijs2005/factshare/internal/server/models"
	"github.com/dmitrijs2005/factshare/internal/server/repositories/aliases"
	"github.com/dmitrijs2005/factshare/internal/share"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "FACTSHARE:eyJ2IjoxfQ"

// --- helpers ---

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// faultyRepo wraps a memory repository and injects failures.
type faultyRepo struct {
	*aliases.MemoryRepository
	createErr    error
	findErr      error
	byTokenErr   error
	deleteErr    error
	createCalled int
}

func (f *faultyRepo) Create(ctx context.Context, a *models.Alias) error {
	f.createCalled++
	if f.createErr != nil {
		return f.createErr
	}
	return f.MemoryRepository.Create(ctx, a)
}

func (f *faultyRepo) FindBySlug(ctx context.Context, slug string) (*models.Alias, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.MemoryRepository.FindBySlug(ctx, slug)
}

func (f *faultyRepo) FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.Alias, error) {
	if f.byTokenErr != nil {
		return nil, f.byTokenErr
	}
	return f.MemoryRepository.FindActiveByToken(ctx, token, now)
}

func (f *faultyRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.MemoryRepository.DeleteExpired(ctx, now)
}

func newTestService(t *testing.T) (*AliasService, *faultyRepo, *clock, *metrics.Metrics) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	repo := &faultyRepo{MemoryRepository: aliases.NewMemoryRepository()}
	m := metrics.New()
	svc := NewAliasService(repo, cfg, logging.Discard(), m)

	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = c.now
	return svc, repo, c, m
}

// slugs returns a generator yielding the given slugs in order.
func slugs(list ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		s := list[i%len(list)]
		i++
		return s, nil
	}
}

// --- tests ---

func TestMint_CreatesAlias(t *testing.T) {
	svc, _, c, m := newTestService(t)

	a, err := svc.Mint(context.Background(), testToken)
	require.NoError(t, err)

	assert.Len(t, a.Slug, 8)
	assert.True(t, share.IsSlug(a.Slug))
	assert.Equal(t, testToken, a.Token)
	assert.Equal(t, c.t.Add(72*time.Hour), a.ExpiresAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mints.WithLabelValues(metrics.OutcomeCreated)))

	got, err := svc.Resolve(context.Background(), a.Slug)
	require.NoError(t, err)
	assert.Equal(t, testToken, got.Token)
}

func TestMint_ReusesActiveAlias(t *testing.T) {
	svc, repo, c, m := newTestService(t)
	ctx := context.Background()

	first, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)

	c.advance(time.Hour)
	second, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)

	assert.Equal(t, first.Slug, second.Slug)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
	assert.Equal(t, 1, repo.createCalled)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mints.WithLabelValues(metrics.OutcomeReused)))
}

func TestMint_ReissuesAfterExpiry(t *testing.T) {
	svc, _, c, _ := newTestService(t)
	svc.newSlug = slugs("AAAA2222", "BBBB3333")
	ctx := context.Background()

	first, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)

	c.advance(72 * time.Hour)
	_, err = svc.Resolve(ctx, first.Slug)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	second, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, "BBBB3333", second.Slug)
	assert.Equal(t, c.t.Add(72*time.Hour), second.ExpiresAt)
}

func TestMint_RetriesOnConflict(t *testing.T) {
	svc, _, _, m := newTestService(t)
	ctx := context.Background()

	svc.newSlug = slugs("TAKEN222")
	_, err := svc.Mint(ctx, "FACTSHARE:other")
	require.NoError(t, err)

	svc.newSlug = slugs("TAKEN222", "TAKEN222", "FRESH333")
	a, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)
	assert.Equal(t, "FRESH333", a.Slug)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SlugConflicts))
}

func TestMint_ConflictExhaustion(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.createErr = common.ErrorConflict

	_, err := svc.Mint(context.Background(), testToken)
	assert.ErrorIs(t, err, common.ErrorUnavailable)
	assert.Equal(t, 5, repo.createCalled)
}

func TestMint_Validation(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	for _, tok := range []string{"", "hello", "factshare:abc", " FACTSHARE:abc", share.TokenPrefix + strings.Repeat("A", MaxTokenLength)} {
		_, err := svc.Mint(context.Background(), tok)
		assert.ErrorIs(t, err, common.ErrorValidation, "token %.20q", tok)
	}
	assert.Zero(t, repo.createCalled)
}

func TestMint_StoreFailures(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		repo.byTokenErr = errors.New("db error: connection refused")

		_, err := svc.Mint(context.Background(), testToken)
		assert.ErrorIs(t, err, common.ErrorUnavailable)
		assert.Zero(t, repo.createCalled)
	})

	t.Run("insert", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		repo.createErr = errors.New("db error: disk full")

		_, err := svc.Mint(context.Background(), testToken)
		assert.ErrorIs(t, err, common.ErrorUnavailable)
		assert.Equal(t, 1, repo.createCalled)
	})

	t.Run("slug source", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		svc.newSlug = func(int) (string, error) { return "", errors.New("entropy gone") }

		_, err := svc.Mint(context.Background(), testToken)
		assert.ErrorIs(t, err, common.ErrorUnavailable)
	})
}

func TestResolve_NotFoundParity(t *testing.T) {
	svc, _, c, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)

	_, absentErr := svc.Resolve(ctx, "ZZZZ9999")
	c.advance(73 * time.Hour)
	_, expiredErr := svc.Resolve(ctx, a.Slug)
	_, invalidErr := svc.Resolve(ctx, "../etc")

	for _, err := range []error{absentErr, expiredErr, invalidErr} {
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.Equal(t, absentErr.Error(), err.Error())
	}
}

func TestResolve_ExpiresExactlyAtExpiry(t *testing.T) {
	svc, _, c, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)

	c.t = a.ExpiresAt.Add(-time.Nanosecond)
	_, err = svc.Resolve(ctx, a.Slug)
	require.NoError(t, err)

	c.t = a.ExpiresAt
	_, err = svc.Resolve(ctx, a.Slug)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestResolve_StoreFailure(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.findErr = errors.New("timeout")

	_, err := svc.Resolve(context.Background(), "AAAA2222")
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}

func TestCleanup(t *testing.T) {
	svc, repo, c, m := newTestService(t)
	ctx := context.Background()

	svc.newSlug = slugs("AAAA2222", "BBBB3333")
	_, err := svc.Mint(ctx, testToken)
	require.NoError(t, err)
	c.advance(48 * time.Hour)
	_, err = svc.Mint(ctx, "FACTSHARE:second")
	require.NoError(t, err)

	c.advance(25 * time.Hour)
	n, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CleanupDeleted))

	repo.deleteErr = errors.New("boom")
	_, err = svc.Cleanup(ctx)
	assert.Error(t, err)
}

func TestRandomSlug(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		s, err := randomSlug(8)
		require.NoError(t, err)
		require.Len(t, s, 8)
		require.True(t, share.IsSlug(s), s)
		seen[s] = true
	}
	assert.Greater(t, len(seen), 195)
}
