package aliases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/dbx"
	"github.com/dmitrijs2005/factshare/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Alias) error {
	query := `
		INSERT INTO aliases (slug, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, a.Slug, a.Token, a.ExpiresAt, a.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*models.Alias, error) {
	query := `
		SELECT slug, token, expires_at, created_at
		FROM aliases
		WHERE slug = $1
	`
	return r.findOne(ctx, query, slug)
}

func (r *PostgresRepository) FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.Alias, error) {
	query := `
		SELECT slug, token, expires_at, created_at
		FROM aliases
		WHERE token = $1 AND expires_at > $2
		ORDER BY expires_at DESC
		LIMIT 1
	`
	return r.findOne(ctx, query, token, now)
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM aliases
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.Alias, error) {
	a := &models.Alias{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&a.Slug, &a.Token, &a.ExpiresAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
