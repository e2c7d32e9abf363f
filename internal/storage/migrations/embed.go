// Package migrations embeds the SQL migration files for both storage
// backends. Files are named NNN_description.sql and applied in order.
package migrations

import "embed"

// SQLite holds the migrations for the SQLite backend.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the migrations for the PostgreSQL backend.
//
//go:embed postgres/*.sql
var Postgres embed.FS
