package testutil

import (
	"context"
	"database/sql"
	"testing"

	"pulse-go/internal/database"
	"pulse-go/internal/pulse"
)

// NewTestDatabase creates a new in-memory SQLite database with schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T, clock pulse.Clock) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, clock)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// AccountOption customizes an account created by AddAccount.
type AccountOption func(*pulse.Account)

// WithClient sets the owning client.
func WithClient(clientID string) AccountOption {
	return func(a *pulse.Account) { a.ClientID = clientID }
}

// WithCredential sets the stored credential; an empty string stores NULL.
func WithCredential(credential string) AccountOption {
	return func(a *pulse.Account) {
		a.AccessCredential = sql.NullString{String: credential, Valid: credential != ""}
	}
}

// Inactive marks the account inactive.
func Inactive() AccountOption {
	return func(a *pulse.Account) { a.IsActive = false }
}

// AddAccount creates an active account with credential "token-<id>" on client "client-1".
func AddAccount(t *testing.T, db pulse.Database, id string, platform pulse.Platform, opts ...AccountOption) *pulse.Account {
	t.Helper()

	account := &pulse.Account{
		ID:                id,
		ClientID:          "client-1",
		Platform:          platform,
		ExternalAccountID: "ext-" + id,
		AccessCredential:  sql.NullString{String: "token-" + id, Valid: true},
		IsActive:          true,
	}
	for _, opt := range opts {
		opt(account)
	}

	if err := db.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount(%s) error = %v", id, err)
	}
	return account
}
