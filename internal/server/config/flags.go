package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/factshare/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-k string   alias store: postgres, redis or memory
//	-d string   PostgreSQL DSN
//	-r string   Redis URL
//	-t int      alias lifetime, hours
//	-n int      slug length
//	-m int      slug attempts per mint
//	-o string   public origin for share links
//	-l string   log level
//
// Duration flags are accepted as integer hours.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-d", "-r", "-t", "-n", "-m", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.Store, "k", cfg.Store, "alias store (postgres|redis|memory)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "redis URL")
	ttl := fs.Int("t", int(cfg.AliasTTL.Hours()), "alias ttl (in hours)")
	fs.IntVar(&cfg.SlugLength, "n", cfg.SlugLength, "slug length")
	fs.IntVar(&cfg.MaxMintAttempts, "m", cfg.MaxMintAttempts, "slug attempts per mint")
	fs.StringVar(&cfg.PublicOrigin, "o", cfg.PublicOrigin, "public origin for share links")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only an explicit -t replaces a sub-hour TTL from the JSON file.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.AliasTTL = time.Duration(*ttl) * time.Hour
		}
	})
}
