// Package migrations embeds the run ledger schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
