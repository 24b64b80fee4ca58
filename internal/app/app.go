package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"pulse-go/internal/config"
	"pulse-go/internal/database"
	"pulse-go/internal/encryption"
	"pulse-go/internal/httpapi"
	"pulse-go/internal/metrics"
	"pulse-go/internal/platform"
	"pulse-go/internal/pulse"
	"pulse-go/internal/vault"
)

// Options customizes how NewPulseApp wires its dependencies.
type Options struct {
	// Passphrase unlocks sealed credentials. It is only called when a sealed
	// credential is read.
	Passphrase PassphraseFunc

	// LogLevel is the minimum level written to the log. Defaults to INFO.
	LogLevel slog.Leveler

	// Adapters replaces the platform adapters built from config.
	Adapters pulse.Adapters

	Clock pulse.Clock
	IDs   pulse.IDGenerator
}

// PulseApp is the application layer between the CLI and the sync service.
// It constructs all dependencies from config, exposes the operations the CLI
// and the HTTP server need, and manages the DB lifecycle on Close.
type PulseApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	vault     pulse.Vault
	encryptor pulse.Encryptor
	metrics   *metrics.Collector
	service   *pulse.Service
	logger    pulse.Logger
	ids       pulse.IDGenerator
	op        *SyncOperation
	logFile   *os.File
}

// NewPulseApp creates a fully wired PulseApp from the given config.
// operation identifies the CLI command being run (e.g. "SyncOne", "Serve").
// The caller must call Close when done.
func NewPulseApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*PulseApp, error) {
	clock := opts.Clock
	if clock == nil {
		clock = pulse.RealClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = pulse.UUIDGenerator{}
	}

	var v pulse.Vault
	if len(cfg.Vaults) > 0 {
		var err error
		v, err = vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.InstanceID, clock)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	// An in-memory database starts empty every run.
	if cfg.Database.Type == "memory" {
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date (run `pulse db migrate`): %w", err)
	}

	if v != nil {
		if err := checkSnapshotVersion(ctx, db, v, cfg.InstanceID); err != nil {
			db.Close()
			return nil, err
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := clock.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID, opts.LogLevel)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	adapters := opts.Adapters
	if adapters == nil {
		adapters = platform.NewAdapters(cfg)
	}

	collector := metrics.NewCollector(metrics.DefaultNamespace)
	credentials := &credentialUnlocker{encryptor: enc, passphrase: opts.Passphrase}
	svc := pulse.NewService(db, db, adapters, credentials, logger, clock, collector, syncOptions(cfg.Sync))

	return &PulseApp{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		metrics:   collector,
		service:   svc,
		logger:    logger,
		ids:       ids,
		op:        NewSyncOperation(operation),
		logFile:   logFile,
	}, nil
}

// checkSnapshotVersion refuses to start when the vault holds a snapshot written
// by operations this database has never seen.
func checkSnapshotVersion(ctx context.Context, db *database.SQLiteDatabase, v pulse.Vault, instanceID string) error {
	remote, err := v.SnapshotVersion(ctx, instanceID)
	if err != nil {
		return fmt.Errorf("checking remote snapshot version: %w", err)
	}
	local, err := db.MaxOperationID(ctx)
	if err != nil {
		return fmt.Errorf("checking local snapshot version: %w", err)
	}
	if remote > local {
		return fmt.Errorf("local database is behind vault %s (local=%d, remote=%d): run `pulse db restore`", v.Name(), local, remote)
	}
	return nil
}

// syncOptions maps the [sync] config table onto the orchestrator options,
// keeping defaults for unset values.
func syncOptions(cfg config.SyncConfig) pulse.SyncOptions {
	opts := pulse.DefaultSyncOptions()
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	if cfg.AccountTimeout.Duration > 0 {
		opts.AccountTimeout = cfg.AccountTimeout.Duration
	}
	if cfg.MaxAttempts > 0 {
		opts.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.RetryBackoff.Duration > 0 {
		opts.RetryBackoff = cfg.RetryBackoff.Duration
	}
	return opts
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for DB-mutating commands.
func (a *PulseApp) persistOperation(ctx context.Context, parameters ...string) error {
	if a.op.Persisted() {
		return nil
	}
	if len(parameters) > 0 {
		a.op.Parameters = strings.Join(parameters, " ")
	}
	dbOp, err := a.db.CreateOperation(ctx, a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting sync operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// SyncOne syncs a single account and returns the stored record.
func (a *PulseApp) SyncOne(ctx context.Context, accountID string) (*pulse.MetricRecord, error) {
	if err := a.persistOperation(ctx, accountID); err != nil {
		return nil, err
	}
	rec, err := a.service.SyncOne(ctx, accountID)
	return rec, a.op.Fail(err)
}

// SyncMany syncs every active account matching filter.
func (a *PulseApp) SyncMany(ctx context.Context, filter pulse.SyncFilter) (*pulse.BatchSyncResult, error) {
	var params []string
	for _, p := range []string{filter.ClientID, string(filter.Platform)} {
		if p != "" {
			params = append(params, p)
		}
	}
	if err := a.persistOperation(ctx, params...); err != nil {
		return nil, err
	}
	result, err := a.service.SyncMany(ctx, filter)
	return result, a.op.Fail(err)
}

// ListMetrics returns up to limit records of an account, newest first.
func (a *PulseApp) ListMetrics(ctx context.Context, accountID string, limit int) ([]*pulse.MetricRecord, error) {
	return a.service.ListMetrics(ctx, accountID, limit)
}

// NewAccount is the input of AddAccount.
type NewAccount struct {
	ClientID          string
	Platform          pulse.Platform
	ExternalAccountID string
	// Credential is the plaintext access token. It is sealed before storage
	// unless encryption is disabled. Empty stores no credential.
	Credential string
	Inactive   bool
}

// AddAccount links an external account to a client.
func (a *PulseApp) AddAccount(ctx context.Context, in NewAccount) (*pulse.Account, error) {
	switch {
	case strings.TrimSpace(in.ClientID) == "":
		return nil, pulse.ValidationError("client id is required")
	case strings.TrimSpace(in.ExternalAccountID) == "":
		return nil, pulse.ValidationError("external account id is required")
	case !in.Platform.Known():
		return nil, pulse.ValidationError("unsupported platform: %q", string(in.Platform))
	}

	stored, err := a.sealCredential(in.Credential)
	if err != nil {
		return nil, err
	}

	if err := a.persistOperation(ctx, in.ClientID, string(in.Platform), in.ExternalAccountID); err != nil {
		return nil, err
	}

	account := &pulse.Account{
		ID:                a.ids.New(),
		ClientID:          in.ClientID,
		Platform:          in.Platform,
		ExternalAccountID: in.ExternalAccountID,
		AccessCredential:  stored,
		IsActive:          !in.Inactive,
		ConnectionStatus:  pulse.StatusDisconnected,
	}
	if err := a.db.CreateAccount(ctx, account); err != nil {
		return nil, a.op.Fail(err)
	}
	a.logger.Info("account linked", "account_id", account.ID, "platform", string(account.Platform), "client_id", account.ClientID)
	return account, nil
}

func (a *PulseApp) sealCredential(token string) (sql.NullString, error) {
	if token == "" {
		return sql.NullString{}, nil
	}
	if a.encryptor == nil {
		return sql.NullString{String: token, Valid: true}, nil
	}
	if !a.encryptor.IsConfigured() {
		return sql.NullString{}, fmt.Errorf("credential key not found (run `pulse keys init`)")
	}
	sealed, err := encryption.SealCredential(a.encryptor, token)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: sealed, Valid: true}, nil
}

// ListAccounts returns every linked account, active or not.
func (a *PulseApp) ListAccounts(ctx context.Context) ([]*pulse.Account, error) {
	return a.db.ListAccounts(ctx)
}

// GetHistory returns the most recent recorded operations.
func (a *PulseApp) GetHistory(ctx context.Context, limit int) ([]*pulse.Operation, error) {
	return a.db.ListOperations(ctx, limit)
}

// CheckVault verifies that the configured vault is reachable.
func (a *PulseApp) CheckVault(ctx context.Context) error {
	if a.vault == nil {
		return fmt.Errorf("no vaults configured")
	}
	return a.vault.ValidateSetup(ctx)
}

// Handler returns the HTTP surface: the sync API plus health and metrics endpoints.
func (a *PulseApp) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.NewHandler(a.service, a.logger), a.metrics.Handler())
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record, snapshots the DB, and uploads it to the vault.
// For non-persisted operations: just closes the database.
func (a *PulseApp) Close() error {
	// Close runs after the command's context may already be canceled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.op.Persisted() {
		if err := a.db.FinishOperation(ctx, a.op.ID, a.op.Status); err != nil {
			keep(fmt.Errorf("finishing sync operation: %w", err))
		}

		// Scheduled syncs during `serve` record their own operations, so the
		// snapshot version is the newest operation rather than this one.
		version, err := a.db.MaxOperationID(ctx)
		if err != nil || version < a.op.ID {
			version = a.op.ID
		}

		tmpPath, err := a.snapshotDatabase()
		keep(err)
		keep(a.closeDatabase())

		if tmpPath != "" {
			keep(a.uploadSnapshot(ctx, tmpPath, version))
			os.Remove(tmpPath)
		}
	} else {
		keep(a.closeDatabase())
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

func (a *PulseApp) closeDatabase() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// snapshotDatabase copies the database to a temp file with VACUUM INTO.
// It returns "" when no vault is configured.
func (a *PulseApp) snapshotDatabase() (string, error) {
	if a.vault == nil {
		a.logger.Warn("no vault configured, skipping snapshot")
		return "", nil
	}

	tmpFile, err := os.CreateTemp("", "pulse-db-snapshot-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for db snapshot: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	// VACUUM INTO refuses to overwrite a non-empty file but accepts an empty one.
	if err := a.db.BackupTo(tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}

// uploadSnapshot uploads the snapshot at path to the vault, tagged with version.
func (a *PulseApp) uploadSnapshot(ctx context.Context, path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening db snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat db snapshot: %w", err)
	}

	if err := a.vault.PutSnapshot(ctx, a.cfg.InstanceID, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}
	a.logger.Info("snapshot uploaded", "vault", a.vault.Name(), "version", version, "bytes", info.Size())
	return nil
}
