// Package db embeds the SQL migrations so binaries can apply them without
// a checkout on disk.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath is the directory inside Migrations that holds the files.
const MigrationsPath = "migrations"
