package pulse

import (
	"context"
	"io"
)

// Vault stores versioned snapshots of an instance's database off-host.
type Vault interface {
	// Name identifies the vault in logs.
	Name() string

	// PutSnapshot stores the snapshot read from r. size is the number of bytes
	// r will yield; version is stored alongside for consistency checks.
	PutSnapshot(ctx context.Context, instanceID string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the latest snapshot of instanceID to w.
	GetSnapshot(ctx context.Context, instanceID string, w io.Writer) error

	// SnapshotVersion returns the version of the stored snapshot, or 0 when none exists.
	SnapshotVersion(ctx context.Context, instanceID string) (int64, error)

	// ValidateSetup verifies that the vault is reachable and writable.
	ValidateSetup(ctx context.Context) error
}
