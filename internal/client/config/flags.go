package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/factshare/internal/flagx"
)

// parseFlags populates Config fields from the short flags this package owns.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-o", "-d", "-p", "-t", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "alias registry base URL")
	fs.StringVar(&cfg.PublicOrigin, "o", cfg.PublicOrigin, "public origin for share links")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.ProfilePath, "p", cfg.ProfilePath, "profile JSON path")
	fs.StringVar(&cfg.Backup.Bucket, "b", cfg.Backup.Bucket, "S3 bucket for backups")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "registry request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
