package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	"pulse-go/internal/database"
	"pulse-go/internal/database/migrations"
)

func main() {
	out := flag.String("out", "internal/database/sqlc/schema.sql", "schema file to write, relative to the module root")
	flag.Parse()

	db, err := database.OpenConnection(":memory:")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	schema, err := dumpSchema(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to dump schema: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, []byte(schema), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

// dumpSchema renders every table, index and trigger of the migrated database,
// leaving out sqlite internals and the migrate bookkeeping table.
func dumpSchema(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT sql
		FROM sqlite_master
		WHERE type IN ('table', 'index', 'trigger')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY
		  CASE type WHEN 'table' THEN 1 WHEN 'index' THEN 2 ELSE 3 END,
		  name
	`)
	if err != nil {
		return "", fmt.Errorf("listing schema objects: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("-- Generated from internal/database/migrations/files by tools/generate_schema.go.\n")
	b.WriteString("-- Do not edit; run `go generate ./internal/database` instead.\n\n")
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning schema row: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading schema rows: %w", err)
	}
	return b.String(), nil
}
