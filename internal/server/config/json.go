package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/factshare/internal/flagx"
	"github.com/dmitrijs2005/factshare/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Durations accept "72h" style strings or integer nanoseconds.
type JsonConfig struct {
	Addr            string         `json:"addr"`
	Store           string         `json:"store"`
	DatabaseDSN     string         `json:"database_dsn"`
	RedisURL        string         `json:"redis_url"`
	RedisKeyPrefix  string         `json:"redis_key_prefix"`
	AliasTTL        timex.Duration `json:"alias_ttl"`
	SlugLength      int            `json:"slug_length"`
	MaxMintAttempts int            `json:"max_mint_attempts"`
	PublicOrigin    string         `json:"public_origin"`
	CleanupSchedule *string        `json:"cleanup_schedule"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
}

// parseJson loads configuration values from the JSON file named by -c/-config
// (or the FACTSHARE_SERVER_CONFIG variable) and overlays the non-empty ones.
// It panics if the file cannot be read or contains invalid JSON.
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

	set(&cfg.Addr, jc.Addr)
	set(&cfg.Store, jc.Store)
	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.RedisURL, jc.RedisURL)
	set(&cfg.RedisKeyPrefix, jc.RedisKeyPrefix)
	set(&cfg.PublicOrigin, jc.PublicOrigin)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	if jc.AliasTTL.Duration > 0 {
		cfg.AliasTTL = jc.AliasTTL.Duration
	}
	if jc.SlugLength > 0 {
		cfg.SlugLength = jc.SlugLength
	}
	if jc.MaxMintAttempts > 0 {
		cfg.MaxMintAttempts = jc.MaxMintAttempts
	}
	// An explicit empty schedule disables cleanup.
	if jc.CleanupSchedule != nil {
		cfg.CleanupSchedule = *jc.CleanupSchedule
	}
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
