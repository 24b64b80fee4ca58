package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pulse-go/internal/config"
	"pulse-go/internal/database"
	"pulse-go/internal/database/migrations"
	"pulse-go/internal/encryption"
	"pulse-go/internal/vault"
)

// The functions here run before a PulseApp can be built: they prepare the
// database, the credential key and the local copy of the vault snapshot.

// MigrateDatabase applies pending schema migrations and returns the resulting status.
func MigrateDatabase(cfg *config.Config) (migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.InstanceID, nil)
	if err != nil {
		return migrations.Status{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return migrations.Status{}, err
	}
	return db.MigrationStatus()
}

// DatabaseStatus reports the schema version without changing anything.
func DatabaseStatus(cfg *config.Config) (migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.InstanceID, nil)
	if err != nil {
		return migrations.Status{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	return db.MigrationStatus()
}

// InitKeys generates the credential key pair, protected by the passphrase.
func InitKeys(cfg *config.Config, passphrase PassphraseFunc) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return err
	}
	if enc == nil {
		return fmt.Errorf("encryption is disabled (encryption.type = %q)", cfg.Encryption.Type)
	}
	if enc.IsConfigured() {
		return fmt.Errorf("credential key already exists at %s", cfg.Encryption.PublicKeyPath)
	}

	pass, err := passphrase()
	if err != nil {
		return err
	}
	if pass == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	return enc.Setup(pass)
}

// RestoreDatabase replaces the local sqlite database with the latest snapshot
// from the first configured vault and returns the snapshot version. An
// existing database is only overwritten when force is set.
func RestoreDatabase(ctx context.Context, cfg *config.Config, force bool) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("restore needs a sqlite database, have %q", cfg.Database.Type)
	}
	if len(cfg.Vaults) == 0 {
		return 0, fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return 0, fmt.Errorf("creating vault: %w", err)
	}

	version, err := v.SnapshotVersion(ctx, cfg.InstanceID)
	if err != nil {
		return 0, fmt.Errorf("checking remote snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("vault %s has no snapshot for instance %s", v.Name(), cfg.InstanceID)
	}

	dest := database.SQLitePath(cfg.Database, cfg.InstanceID)
	if _, err := os.Stat(dest); err == nil && !force {
		return 0, fmt.Errorf("database already exists at %s (use --force to overwrite)", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".restore-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := v.GetSnapshot(ctx, cfg.InstanceID, tmp); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return 0, fmt.Errorf("replacing database: %w", err)
	}
	return version, nil
}
