package pulse

import (
	"context"
	"database/sql"
	"time"
)

// AccountRegistry is the slice of the account registry the sync engine reads and writes.
// Lookups return nil, nil when nothing matches.
type AccountRegistry interface {
	// FindAccountByID returns the account with the given ID.
	FindAccountByID(ctx context.Context, id string) (*Account, error)

	// ListActiveAccounts returns active accounts, scoped to one client when clientID is non-empty.
	ListActiveAccounts(ctx context.Context, clientID string) ([]*Account, error)

	// ListActiveAccountsByPlatform returns active accounts on one platform.
	ListActiveAccountsByPlatform(ctx context.Context, platform Platform, clientID string) ([]*Account, error)

	// MarkSynced records a successful sync: last_sync = at, connection_status = Connected.
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

// MetricStore owns MetricRecord persistence. Records are append-only.
type MetricStore interface {
	// Append inserts record unconditionally and sets its ID and CreatedAt.
	Append(ctx context.Context, record *MetricRecord) error

	// MostRecentBefore returns the latest record for the account and platform,
	// ordered by date then insertion order. When before is non-nil only records
	// dated strictly earlier than that calendar day are considered.
	MostRecentBefore(ctx context.Context, accountID string, platform Platform, before *time.Time) (*MetricRecord, error)

	// ListMetrics returns up to limit records for an account, newest first.
	ListMetrics(ctx context.Context, accountID string, limit int) ([]*MetricRecord, error)
}

// Operation is one recorded CLI or API run that mutated the database.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

// Database is the full storage surface: registry, metric store and operation log.
type Database interface {
	AccountRegistry
	MetricStore

	// CreateAccount links a new account. Used by the account linking CLI.
	CreateAccount(ctx context.Context, account *Account) error

	// ListAccounts returns every account, active or not.
	ListAccounts(ctx context.Context) ([]*Account, error)

	CreateOperation(ctx context.Context, operation, parameters string) (*Operation, error)
	FinishOperation(ctx context.Context, id int64, status string) error
	ListOperations(ctx context.Context, limit int) ([]*Operation, error)
	MaxOperationID(ctx context.Context) (int64, error)

	// Close closes the database connection.
	Close() error
}
