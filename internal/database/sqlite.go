package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pulse-go/internal/database/migrations"
	"pulse-go/internal/database/sqlc"
	"pulse-go/internal/pulse"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements pulse.Database using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	clock   pulse.Clock
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
// A nil clock uses the real clock.
func NewSQLiteDatabase(path string, clock pulse.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteDatabaseFromDB(db, clock)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock pulse.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = pulse.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		clock:   clock,
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each pooled connection to ":memory:" would be a separate, empty database.
	// A single connection also serializes the concurrent writers of a batch sync.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Account registry

func (s *SQLiteDatabase) FindAccountByID(ctx context.Context, id string) (*pulse.Account, error) {
	row, err := s.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding account %s: %w", id, err)
	}
	return toAccount(row), nil
}

func (s *SQLiteDatabase) ListActiveAccounts(ctx context.Context, clientID string) ([]*pulse.Account, error) {
	var (
		rows []sqlc.Account
		err  error
	)
	if clientID == "" {
		rows, err = s.queries.ListActiveAccounts(ctx)
	} else {
		rows, err = s.queries.ListActiveAccountsByClient(ctx, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing active accounts: %w", err)
	}
	return toAccounts(rows), nil
}

func (s *SQLiteDatabase) ListActiveAccountsByPlatform(ctx context.Context, platform pulse.Platform, clientID string) ([]*pulse.Account, error) {
	rows, err := s.queries.ListActiveAccountsByPlatform(ctx, sqlc.ListActiveAccountsByPlatformParams{
		Platform: string(platform),
		ClientID: clientID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing active %s accounts: %w", platform, err)
	}
	return toAccounts(rows), nil
}

func (s *SQLiteDatabase) ListAccounts(ctx context.Context) ([]*pulse.Account, error) {
	rows, err := s.queries.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return toAccounts(rows), nil
}

// CreateAccount inserts account. ID must be set; CreatedAt is assigned here.
func (s *SQLiteDatabase) CreateAccount(ctx context.Context, account *pulse.Account) error {
	if account.ID == "" {
		return fmt.Errorf("creating account: id is required")
	}
	if account.ConnectionStatus == "" {
		account.ConnectionStatus = pulse.StatusDisconnected
	}
	account.CreatedAt = s.clock.Now().UTC()

	err := s.queries.InsertAccount(ctx, sqlc.InsertAccountParams{
		ID:                account.ID,
		ClientID:          account.ClientID,
		Platform:          string(account.Platform),
		ExternalAccountID: account.ExternalAccountID,
		AccessCredential:  account.AccessCredential,
		IsActive:          account.IsActive,
		ConnectionStatus:  string(account.ConnectionStatus),
		CreatedAt:         account.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) MarkSynced(ctx context.Context, id string, at time.Time) error {
	err := s.queries.UpdateAccountSynced(ctx, sqlc.UpdateAccountSyncedParams{
		LastSync:         sql.NullTime{Time: at.UTC(), Valid: true},
		ConnectionStatus: string(pulse.StatusConnected),
		ID:               id,
	})
	if err != nil {
		return fmt.Errorf("marking account %s synced: %w", id, err)
	}
	return nil
}

// Metric store

func (s *SQLiteDatabase) Append(ctx context.Context, record *pulse.MetricRecord) error {
	createdAt := s.clock.Now().UTC()
	id, err := s.queries.InsertMetricRecord(ctx, sqlc.InsertMetricRecordParams{
		ClientID:          record.ClientID,
		AccountID:         record.AccountID,
		Platform:          string(record.Platform),
		MetricDate:        record.Date,
		Reach:             record.Reach,
		EngagementRate:    record.EngagementRate,
		FollowerCount:     record.FollowerCount,
		FollowersLost:     record.FollowersLost,
		NetFollowerChange: record.NetFollowerChange,
		LinkClicks:        record.LinkClicks,
		ProfileVisits:     record.ProfileVisits,
		Saves:             record.Saves,
		Shares:            record.Shares,
		Comments:          record.Comments,
		Likes:             record.Likes,
		Impressions:       record.Impressions,
		TopPostReach:      record.TopPostReach,
		TopPostUrl:        record.TopPostURL,
		TopPostType:       record.TopPostType,
		HealthScore:       int64(record.HealthScore),
		HealthStatus:      string(record.HealthStatus),
		InsightText:       record.InsightText,
		CreatedAt:         createdAt,
	})
	if err != nil {
		return fmt.Errorf("appending metric record: %w", err)
	}
	record.ID = id
	record.CreatedAt = createdAt
	return nil
}

func (s *SQLiteDatabase) MostRecentBefore(ctx context.Context, accountID string, platform pulse.Platform, before *time.Time) (*pulse.MetricRecord, error) {
	var (
		row sqlc.MetricRecord
		err error
	)
	if before == nil {
		row, err = s.queries.GetLatestMetricRecord(ctx, sqlc.GetLatestMetricRecordParams{
			AccountID: accountID,
			Platform:  string(platform),
		})
	} else {
		row, err = s.queries.GetLatestMetricRecordBefore(ctx, sqlc.GetLatestMetricRecordBeforeParams{
			AccountID:  accountID,
			Platform:   string(platform),
			MetricDate: before.UTC().Format(pulse.DateLayout),
		})
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding latest metric record: %w", err)
	}
	return toMetricRecord(row), nil
}

func (s *SQLiteDatabase) ListMetrics(ctx context.Context, accountID string, limit int) ([]*pulse.MetricRecord, error) {
	rows, err := s.queries.ListMetricRecords(ctx, sqlc.ListMetricRecordsParams{
		AccountID: accountID,
		Limit:     int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing metric records: %w", err)
	}

	result := make([]*pulse.MetricRecord, len(rows))
	for i := range rows {
		result[i] = toMetricRecord(rows[i])
	}
	return result, nil
}

// Sync operation tracking

func (s *SQLiteDatabase) CreateOperation(ctx context.Context, operation, parameters string) (*pulse.Operation, error) {
	op, err := s.queries.InsertSyncOperation(ctx, sqlc.InsertSyncOperationParams{
		StartedAt:  s.clock.Now().UTC(),
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("creating sync operation: %w", err)
	}
	return toOperation(op), nil
}

func (s *SQLiteDatabase) FinishOperation(ctx context.Context, id int64, status string) error {
	err := s.queries.UpdateSyncOperationFinished(ctx, sqlc.UpdateSyncOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: s.clock.Now().UTC(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing sync operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(ctx context.Context, limit int) ([]*pulse.Operation, error) {
	ops, err := s.queries.GetSyncOperations(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing sync operations: %w", err)
	}

	result := make([]*pulse.Operation, len(ops))
	for i := range ops {
		result[i] = toOperation(ops[i])
	}
	return result, nil
}

func (s *SQLiteDatabase) MaxOperationID(ctx context.Context) (int64, error) {
	id, err := s.queries.GetMaxSyncOperationID(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting max sync operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrationStatus reports the applied and latest schema versions.
func (s *SQLiteDatabase) MigrationStatus() (migrations.Status, error) {
	return migrations.ReadStatus(s.db)
}

// Migrate applies pending migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func toAccount(row sqlc.Account) *pulse.Account {
	return &pulse.Account{
		ID:                row.ID,
		ClientID:          row.ClientID,
		Platform:          pulse.Platform(row.Platform),
		ExternalAccountID: row.ExternalAccountID,
		AccessCredential:  row.AccessCredential,
		IsActive:          row.IsActive,
		LastSync:          row.LastSync,
		ConnectionStatus:  pulse.ConnectionStatus(row.ConnectionStatus),
		CreatedAt:         row.CreatedAt,
	}
}

func toAccounts(rows []sqlc.Account) []*pulse.Account {
	result := make([]*pulse.Account, len(rows))
	for i := range rows {
		result[i] = toAccount(rows[i])
	}
	return result
}

func toMetricRecord(row sqlc.MetricRecord) *pulse.MetricRecord {
	return &pulse.MetricRecord{
		ID:                row.ID,
		ClientID:          row.ClientID,
		AccountID:         row.AccountID,
		Platform:          pulse.Platform(row.Platform),
		Date:              row.MetricDate,
		Reach:             row.Reach,
		EngagementRate:    row.EngagementRate,
		FollowerCount:     row.FollowerCount,
		FollowersLost:     row.FollowersLost,
		NetFollowerChange: row.NetFollowerChange,
		LinkClicks:        row.LinkClicks,
		ProfileVisits:     row.ProfileVisits,
		Saves:             row.Saves,
		Shares:            row.Shares,
		Comments:          row.Comments,
		Likes:             row.Likes,
		Impressions:       row.Impressions,
		TopPostReach:      row.TopPostReach,
		TopPostURL:        row.TopPostUrl,
		TopPostType:       row.TopPostType,
		HealthScore:       int(row.HealthScore),
		HealthStatus:      pulse.HealthStatus(row.HealthStatus),
		InsightText:       row.InsightText,
		CreatedAt:         row.CreatedAt,
	}
}

func toOperation(op sqlc.SyncOperation) *pulse.Operation {
	return &pulse.Operation{
		ID:         op.ID,
		Operation:  op.Operation,
		Parameters: op.Parameters,
		Status:     op.Status,
		StartedAt:  op.StartedAt,
		FinishedAt: op.FinishedAt,
	}
}

// Compile-time check that SQLiteDatabase implements pulse.Database interface
var _ pulse.Database = (*SQLiteDatabase)(nil)
