// Package migrations embeds the credential database schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
