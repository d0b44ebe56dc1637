// Package migrations embeds the per-dialect schema for SQL-backed sheets.
package migrations

import "embed"

// Migrations holds goose migrations under "postgres/" and "sqlite/".
//
//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
