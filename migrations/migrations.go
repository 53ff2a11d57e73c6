// Package migrations embeds the versioned SQL schema of the booking service.
package migrations

import "embed"

// FS holds the golang-migrate up/down files.
//
//go:embed *.sql
var FS embed.FS
