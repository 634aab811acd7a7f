package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/factshare/internal/flagx"
	"github.com/dmitrijs2005/factshare/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	PublicOrigin   string         `json:"public_origin"`
	DBPath         string         `json:"db_path"`
	ProfilePath    string         `json:"profile_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	MaxFactLength  int            `json:"max_fact_length"`
	LogLevel       string         `json:"log_level"`
	Backup         struct {
		Bucket          string `json:"bucket"`
		Region          string `json:"region"`
		Endpoint        string `json:"endpoint"`
		Prefix          string `json:"prefix"`
		AccessKeyID     string `json:"access_key_id"`
		SecretAccessKey string `json:"secret_access_key"`
		Passphrase      string `json:"passphrase"`
	} `json:"backup"`
}

// parseJson overlays cfg with the non-empty values of the JSON config file.
// It panics when the file cannot be read or parsed.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:], EnvConfigPath)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.ServerURL, jc.ServerURL)
	set(&cfg.PublicOrigin, jc.PublicOrigin)
	set(&cfg.DBPath, jc.DBPath)
	set(&cfg.ProfilePath, jc.ProfilePath)
	set(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxFactLength > 0 {
		cfg.MaxFactLength = jc.MaxFactLength
	}

	set(&cfg.Backup.Bucket, jc.Backup.Bucket)
	set(&cfg.Backup.Region, jc.Backup.Region)
	set(&cfg.Backup.Endpoint, jc.Backup.Endpoint)
	set(&cfg.Backup.Prefix, jc.Backup.Prefix)
	set(&cfg.Backup.AccessKeyID, jc.Backup.AccessKeyID)
	set(&cfg.Backup.SecretAccessKey, jc.Backup.SecretAccessKey)
	set(&cfg.Backup.Passphrase, jc.Backup.Passphrase)
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
