// Package migrations carries the embedded goose migrations, one directory
// per SQL dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
