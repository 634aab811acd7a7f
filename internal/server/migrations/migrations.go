// Package migrations embeds the goose SQL migrations of the alias registry.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
