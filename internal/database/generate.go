package database

// Schema and query code are generated from the migration files:
//
//	go generate ./internal/database
//
// The first step replays the migrations into an in-memory database and dumps
// sqlc/schema.sql; the second regenerates the sqlc query layer from it.

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go -out internal/database/sqlc/schema.sql"
//go:generate sh -c "cd ../.. && sqlc generate -f internal/database/sqlc/sqlc.yaml"
