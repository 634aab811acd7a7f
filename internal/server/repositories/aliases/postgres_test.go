package aliases

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQ   = `(?s)^\s*INSERT\s+INTO\s+aliases\s*\(slug,\s*token,\s*expires_at,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`
	bySlugQ   = `(?s)^\s*SELECT\s+slug,\s*token,\s*expires_at,\s*created_at\s+FROM\s+aliases\s+WHERE\s+slug\s*=\s*\$1\s*$`
	byTokenQ  = `(?s)^\s*SELECT\s+slug,\s*token,\s*expires_at,\s*created_at\s+FROM\s+aliases\s+WHERE\s+token\s*=\s*\$1\s+AND\s+expires_at\s*>\s*\$2\s+ORDER\s+BY\s+expires_at\s+DESC\s+LIMIT\s+1\s*$`
	deleteQ   = `(?s)^\s*DELETE\s+FROM\s+aliases\s+WHERE\s+expires_at\s*<=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func sampleAlias() *models.Alias {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Alias{Slug: "Ab3dEf7h", Token: "FACTSHARE:abc", CreatedAt: now, ExpiresAt: now.Add(72 * time.Hour)}
}

func TestPostgresCreate(t *testing.T) {
	a := sampleAlias()

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertQ).WithArgs(a.Slug, a.Token, a.ExpiresAt, a.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Create(context.Background(), a))
	})

	t.Run("duplicate slug", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertQ).WithArgs(a.Slug, a.Token, a.ExpiresAt, a.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"aliases_pkey\""})
		assert.ErrorIs(t, repo.Create(context.Background(), a), common.ErrorConflict)
	})

	t.Run("db down", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertQ).WithArgs(a.Slug, a.Token, a.ExpiresAt, a.CreatedAt).
			WillReturnError(errors.New("connection refused"))
		err := repo.Create(context.Background(), a)
		assert.ErrorContains(t, err, "db error: connection refused")
		assert.NotErrorIs(t, err, common.ErrorConflict)
	})
}

func TestPostgresFindBySlug(t *testing.T) {
	a := sampleAlias()

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(bySlugQ).WithArgs(a.Slug).
			WillReturnRows(sqlmock.NewRows([]string{"slug", "token", "expires_at", "created_at"}).
				AddRow(a.Slug, a.Token, a.ExpiresAt, a.CreatedAt))

		got, err := repo.FindBySlug(context.Background(), a.Slug)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	})

	t.Run("absent", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(bySlugQ).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.FindBySlug(context.Background(), "missing")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(bySlugQ).WithArgs("x").WillReturnError(errors.New("boom"))

		_, err := repo.FindBySlug(context.Background(), "x")
		assert.ErrorContains(t, err, "db error: boom")
	})
}

func TestPostgresFindActiveByToken(t *testing.T) {
	a := sampleAlias()
	now := a.CreatedAt.Add(time.Hour)

	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(byTokenQ).WithArgs(a.Token, now).
		WillReturnRows(sqlmock.NewRows([]string{"slug", "token", "expires_at", "created_at"}).
			AddRow(a.Slug, a.Token, a.ExpiresAt, a.CreatedAt))
	mock.ExpectQuery(byTokenQ).WithArgs("FACTSHARE:other", now).WillReturnError(sql.ErrNoRows)

	got, err := repo.FindActiveByToken(context.Background(), a.Token, now)
	require.NoError(t, err)
	assert.Equal(t, a.Slug, got.Slug)

	_, err = repo.FindActiveByToken(context.Background(), "FACTSHARE:other", now)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresDeleteExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(deleteQ).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteExpired(context.Background(), now)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})

	t.Run("error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(deleteQ).WithArgs(now).WillReturnError(errors.New("boom"))

		_, err := repo.DeleteExpired(context.Background(), now)
		assert.Error(t, err)
	})
}
