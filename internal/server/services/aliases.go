// Package services implements the alias registry: minting short slugs for
// share tokens and resolving them back while they are active.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/server/config"
	"github.com/dmitrijs2005/factshare/internal/server/metrics"
	"github.com/dmitrijs2005/factshare/internal/server/models"
	"github.com/dmitrijs2005/factshare/internal/server/repositories/aliases"
	"github.com/dmitrijs2005/factshare/internal/share"
)

// MaxTokenLength bounds what the registry agrees to store.
const MaxTokenLength = 16384

// ErrAliasNotFound is returned for unknown and expired slugs alike.
var ErrAliasNotFound = fmt.Errorf("%w: link expired or unknown", common.ErrorNotFound)

type AliasService struct {
	repo        aliases.Repository
	ttl         time.Duration
	slugLength  int
	maxAttempts int
	log         logging.Logger
	metrics     *metrics.Metrics

	now     func() time.Time
	newSlug func(n int) (string, error)
}

func NewAliasService(repo aliases.Repository, cfg *config.Config, log logging.Logger, m *metrics.Metrics) *AliasService {
	return &AliasService{
		repo:        repo,
		ttl:         cfg.AliasTTL,
		slugLength:  cfg.SlugLength,
		maxAttempts: cfg.MaxMintAttempts,
		log:         log.With("module", "aliases"),
		metrics:     m,
		now:         time.Now,
		newSlug:     randomSlug,
	}
}

// Mint returns an active alias for token. An alias minted earlier for the
// same token is reused while it is active; otherwise a fresh slug is drawn
// and stored, retrying on slug collisions.
func (s *AliasService) Mint(ctx context.Context, token string) (*models.Alias, error) {
	if !share.HasTokenPrefix(token) {
		s.metrics.IncMint(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: token must start with %s", common.ErrorValidation, share.TokenPrefix)
	}
	if len(token) > MaxTokenLength {
		s.metrics.IncMint(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: token longer than %d bytes", common.ErrorValidation, MaxTokenLength)
	}

	now := s.now().UTC()

	existing, err := s.repo.FindActiveByToken(ctx, token, now)
	switch {
	case err == nil:
		s.metrics.IncMint(metrics.OutcomeReused)
		return existing, nil
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.unavailable(ctx, "alias lookup failed", err)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		slug, err := s.newSlug(s.slugLength)
		if err != nil {
			return nil, s.unavailable(ctx, "slug generation failed", err)
		}

		a := &models.Alias{
			Slug:      slug,
			Token:     token,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}

		err = s.repo.Create(ctx, a)
		if err == nil {
			s.metrics.IncMint(metrics.OutcomeCreated)
			s.log.Info(ctx, "alias minted", "slug", slug, "expires_at", a.ExpiresAt, "attempt", attempt)
			return a, nil
		}
		if !errors.Is(err, common.ErrorConflict) {
			return nil, s.unavailable(ctx, "alias insert failed", err)
		}

		s.metrics.IncSlugConflict()
		s.log.Debug(ctx, "slug taken, retrying", "slug", slug, "attempt", attempt)
	}

	s.metrics.IncMint(metrics.OutcomeUnavailable)
	s.log.Warn(ctx, "no free slug", "attempts", s.maxAttempts)
	return nil, fmt.Errorf("%w: no free slug after %d attempts", common.ErrorUnavailable, s.maxAttempts)
}

// Resolve returns the active alias for slug. Absent, expired and malformed
// slugs all yield ErrAliasNotFound.
func (s *AliasService) Resolve(ctx context.Context, slug string) (*models.Alias, error) {
	if !share.IsSlug(slug) {
		s.metrics.IncResolve(metrics.OutcomeNotFound)
		return nil, ErrAliasNotFound
	}

	a, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.IncResolve(metrics.OutcomeNotFound)
			return nil, ErrAliasNotFound
		}
		s.metrics.IncResolve(metrics.OutcomeUnavailable)
		s.log.Error(ctx, "alias lookup failed", "slug", slug, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}

	if !a.Active(s.now()) {
		s.metrics.IncResolve(metrics.OutcomeNotFound)
		return nil, ErrAliasNotFound
	}

	s.metrics.IncResolve(metrics.OutcomeFound)
	return a, nil
}

// Cleanup deletes expired aliases and returns how many were removed.
func (s *AliasService) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		s.log.Error(ctx, "alias cleanup failed", "error", err)
		return 0, err
	}
	s.metrics.AddCleanupDeleted(n)
	if n > 0 {
		s.log.Info(ctx, "expired aliases removed", "count", n)
	}
	return n, nil
}

func (s *AliasService) unavailable(ctx context.Context, msg string, err error) error {
	s.metrics.IncMint(metrics.OutcomeUnavailable)
	s.log.Error(ctx, msg, "error", err)
	return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
}
