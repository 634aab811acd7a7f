package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/factshare/internal/client/migrations"
	"github.com/dmitrijs2005/factshare/internal/client/repositories/contacts"
	"github.com/dmitrijs2005/factshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/factshare/internal/dbx"
	"github.com/dmitrijs2005/factshare/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Contacts contacts.Repository
	Metadata metadata.Repository
}

// NewRepositories binds every local repository to db, which may be a
// transaction.
func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Contacts: contacts.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return db, nil
}
