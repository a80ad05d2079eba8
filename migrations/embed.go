// Package migrations carries the SQL schema, embedded so the server and tests
// can migrate without a path on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
