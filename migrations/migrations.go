// Package migrations embeds the SQL schema so the binaries carry their own migrations.
package migrations

import "embed"

// Postgres holds the golang-migrate files under postgres/.
//
//go:embed postgres/*.sql
var Postgres embed.FS

const PostgresDir = "postgres"
