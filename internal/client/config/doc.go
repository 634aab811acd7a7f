// Package config loads runtime configuration for the fact-share CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / -config, or FACTSHARE_CLIENT_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   base URL of the alias registry
//	-o string   public origin used when building share links
//	-d string   path of the local SQLite database
//	-p string   path of the profile JSON shared by "share"
//	-t int      registry request timeout (seconds)
//	-b string   S3 bucket for contact backups
//
// # JSON schema
//
//	{
//	  "server_url": "https://facts.example",
//	  "public_origin": "https://facts.example",
//	  "db_path": "factshare.db",
//	  "profile_path": "profile.json",
//	  "request_timeout": "5s",
//	  "max_fact_length": 280,
//	  "log_level": "info",
//	  "backup": {"bucket": "b", "region": "eu-central-1", "endpoint": "", "prefix": "contacts/"}
//	}
package config
