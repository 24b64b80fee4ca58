package database

import _ "embed"

// Schema is the full schema produced by running every migration.
// Tests apply it directly to in-memory databases.
//
//go:embed sqlc/schema.sql
var Schema string
