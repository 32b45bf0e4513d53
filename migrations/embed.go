// Package migrations embeds the SQL schema for each supported database.
package migrations

import "embed"

// Postgres holds the goose migrations for PostgreSQL
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the goose migrations for SQLite
//
//go:embed sqlite/*.sql
var SQLite embed.FS
