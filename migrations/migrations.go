// Package migrations embeds the SQL files applied by cmd/migrate.
package migrations

import "embed"

// FS holds the golang-migrate up/down files.
//
//go:embed *.sql
var FS embed.FS
