// Package migrations embeds the SQL schema applied before seeding.
package migrations

import "embed"

// FS contains the ordered postgres migrations.
//
//go:embed *.sql
var FS embed.FS
