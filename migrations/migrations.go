// Package migrations embeds the SQL schema migrations so they are
// applied at startup regardless of the process working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
