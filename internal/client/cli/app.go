package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/factshare/internal/client/backup"
	"github.com/dmitrijs2005/factshare/internal/client/client"
	"github.com/dmitrijs2005/factshare/internal/client/config"
	"github.com/dmitrijs2005/factshare/internal/client/services"
	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/share"
)

type App struct {
	config   *config.Config
	db       *sql.DB
	share    services.ShareService
	scan     services.ScanService
	contacts services.ContactService
	log      logging.Logger
	lines    *bufio.Scanner
	prompt   bool
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, "text", os.Stderr)

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	codec := share.NewCodec(share.WithLimits(share.Limits{MaxFactLength: c.MaxFactLength}))

	var aliases client.AliasClient
	if c.ServerURL != "" {
		aliases = client.NewHTTPAliasClient(c.ServerURL, c.RequestTimeout)
	}

	return &App{
		config:   c,
		db:       db,
		share:    services.NewShareService(db, codec, aliases, c.PublicOrigin, log),
		scan:     services.NewScanService(db, codec, aliases, log),
		contacts: services.NewContactService(db, backup.NewUploader(c.Backup)),
		log:      log,
		lines:    newScanner(os.Stdin),
		prompt:   interactive(),
		out:      os.Stdout,
	}, nil
}

// Run starts the REPL on stdin and blocks until it ends.
func (a *App) Run(ctx context.Context) {
	if a.prompt {
		printlnFn("Welcome to the fact-share CLI (type 'help' for commands)")
	}
	runREPL(ctx, a, a.prompt, a.lines)
}

func (a *App) Close() error {
	return a.db.Close()
}
