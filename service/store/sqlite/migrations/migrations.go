// Package migrations embeds the sqlite store schema.
package migrations

import "embed"

// FS holds ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
