package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for pulse.
type Config struct {
	InstanceID string                    `toml:"instance_id"`
	BaseDir    string                    `toml:"base_dir"`
	LogDir     string                    `toml:"log_dir"`
	Vaults     []VaultConfig             `toml:"vaults"`
	Encryption EncryptionConfig          `toml:"encryption"`
	Database   DatabaseConfig            `toml:"database"`
	Sync       SyncConfig                `toml:"sync"`
	Server     ServerConfig              `toml:"server"`
	Platforms  map[string]PlatformConfig `toml:"platforms"`
}

// EncryptionConfig selects how stored access credentials are sealed.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "none" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// VaultConfig represents configuration for an archive backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`
	// Static keys; when empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// DatabaseConfig represents configuration for the metrics database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// SyncConfig tunes the sync orchestrator.
type SyncConfig struct {
	Workers        int      `toml:"workers"`
	AccountTimeout Duration `toml:"account_timeout"`
	MaxAttempts    int      `toml:"max_attempts"`
	RetryBackoff   Duration `toml:"retry_backoff"`
	// Schedule is a cron expression for `pulse serve`; empty disables scheduled syncs.
	Schedule string `toml:"schedule,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// PlatformConfig configures the upstream client of one platform adapter.
// Zero values fall back to the adapter's defaults.
type PlatformConfig struct {
	BaseURL           string   `toml:"base_url,omitempty"`
	Timeout           Duration `toml:"timeout,omitempty"`
	RequestsPerSecond float64  `toml:"requests_per_second,omitempty"`
	Burst             int      `toml:"burst,omitempty"`
}

// Duration is a time.Duration written as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// NewConfig creates a new Config with the provided values and defaults.
func NewConfig(instanceID, baseDir string) *Config {
	return &Config{
		InstanceID: instanceID,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(baseDir, "vault")},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "pulse.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "pulse.key"),
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Sync: SyncConfig{
			Workers:        5,
			AccountTimeout: Duration{60 * time.Second},
			MaxAttempts:    1,
			RetryBackoff:   Duration{2 * time.Second},
		},
		Server: ServerConfig{ListenAddr: "127.0.0.1:8080"},
	}
}

// Platform returns the settings for the named platform, or zero settings.
func (c *Config) Platform(name string) PlatformConfig {
	if c.Platforms == nil {
		return PlatformConfig{}
	}
	return c.Platforms[name]
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
