// Package migrations embeds the goose SQL migrations of the SQLite schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
