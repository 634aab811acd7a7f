package config

import "time"

const EnvConfigPath = "FACTSHARE_CLIENT_CONFIG"

// Backup describes where contact book snapshots are uploaded. An empty
// Bucket disables backups; a Passphrase encrypts them.
type Backup struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Passphrase      string
}

// Config holds runtime settings for the fact-share CLI.
type Config struct {
	ServerURL      string
	PublicOrigin   string
	DBPath         string
	ProfilePath    string
	RequestTimeout time.Duration
	MaxFactLength  int
	LogLevel       string
	Backup         Backup
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.PublicOrigin = "http://127.0.0.1:8080"
	c.DBPath = "factshare.db"
	c.ProfilePath = "profile.json"
	c.RequestTimeout = 5 * time.Second
	c.MaxFactLength = 280
	c.LogLevel = "warn"
	c.Backup = Backup{Region: "us-east-1", Prefix: "factshare/"}
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
