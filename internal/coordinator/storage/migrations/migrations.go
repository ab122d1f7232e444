// Package migrations embeds the goose schema migrations for the SQL store
// backends, one directory per dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
