package database

import "embed"

// EmbeddedMigrations contains all SQL migration files embedded into the
// binary, so migrations run without external files present at runtime.
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS
