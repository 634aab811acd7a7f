package aliases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "factshare:alias:"

// RedisRepository stores each alias as a JSON value under its slug key and
// keeps a secondary token key pointing at the newest slug. Both keys expire
// with the alias, so DeleteExpired has nothing to do.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisOption configures a RedisRepository.
type RedisOption func(*RedisRepository)

// WithKeyPrefix namespaces every key written by the repository.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisRepository) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithClock replaces the clock used to compute key TTLs.
func WithClock(now func() time.Time) RedisOption {
	return func(r *RedisRepository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRedisRepository(client redis.UniversalClient, opts ...RedisOption) *RedisRepository {
	r := &RedisRepository{client: client, prefix: defaultKeyPrefix, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *RedisRepository) slugKey(slug string) string {
	return r.prefix + "slug:" + slug
}

// tokenKey hashes the token since tokens can be several kilobytes long.
func (r *RedisRepository) tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + "token:" + hex.EncodeToString(sum[:])
}

func (r *RedisRepository) Create(ctx context.Context, a *models.Alias) error {
	ttl := a.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: alias %s expires at %s, before it is stored", common.ErrorValidation, a.Slug, a.ExpiresAt.Format(time.RFC3339))
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode alias: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.slugKey(a.Slug), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return common.ErrorConflict
	}

	if err := r.client.Set(ctx, r.tokenKey(a.Token), a.Slug, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) FindBySlug(ctx context.Context, slug string) (*models.Alias, error) {
	data, err := r.client.Get(ctx, r.slugKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	a := &models.Alias{}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("failed to decode alias %q: %w", slug, err)
	}
	return a, nil
}

func (r *RedisRepository) FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.Alias, error) {
	slug, err := r.client.Get(ctx, r.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	a, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	// Guards against a sha256 collision and clock skew against the key TTL.
	if a.Token != token || !a.Active(now) {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

// DeleteExpired is a no-op: Redis evicts keys on their TTL.
func (r *RedisRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
