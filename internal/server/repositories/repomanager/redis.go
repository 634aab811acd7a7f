package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/factshare/internal/server/repositories/aliases"
	"github.com/redis/go-redis/v9"
)

// RedisRepositoryManager vends Redis-backed repositories. Redis needs no
// migrations; RunMigrations only checks connectivity.
type RedisRepositoryManager struct {
	client *redis.Client
	opts   []aliases.RedisOption
}

func NewRedisRepositoryManager(url string, opts ...aliases.RedisOption) (RepositoryManager, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisRepositoryManager{client: redis.NewClient(o), opts: opts}, nil
}

func (m *RedisRepositoryManager) Aliases() aliases.Repository {
	return aliases.NewRedisRepository(m.client, m.opts...)
}

func (m *RedisRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (m *RedisRepositoryManager) Close() error {
	return m.client.Close()
}
