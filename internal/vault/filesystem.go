package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pulse-go/internal/pulse"
)

// FileSystemVault stores snapshots under a root directory:
//
//	<root>/
//	  snapshots/
//	    <instanceID>.db
//	    <instanceID>.version
type FileSystemVault struct {
	name        string
	root        string
	snapshotDir string
}

// NewFileSystemVault creates the directory layout under root if needed.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSystemVault{name: name, root: root, snapshotDir: snapshotDir}, nil
}

func (v *FileSystemVault) Name() string { return v.name }

// PutSnapshot writes the snapshot atomically, then its version marker.
func (v *FileSystemVault) PutSnapshot(_ context.Context, instanceID string, r io.Reader, size int64, version int64) error {
	if err := atomicWrite(v.snapshotPath(instanceID), r, size); err != nil {
		return err
	}
	data := strings.NewReader(strconv.FormatInt(version, 10))
	return atomicWrite(v.versionPath(instanceID), data, data.Size())
}

func (v *FileSystemVault) GetSnapshot(_ context.Context, instanceID string, w io.Writer) error {
	f, err := os.Open(v.snapshotPath(instanceID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("snapshot not found for instance: %s", instanceID)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

func (v *FileSystemVault) SnapshotVersion(_ context.Context, instanceID string) (int64, error) {
	data, err := os.ReadFile(v.versionPath(instanceID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

func (v *FileSystemVault) ValidateSetup(context.Context) error {
	for _, dir := range []string{v.root, v.snapshotDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}

	probe, err := os.CreateTemp(v.snapshotDir, ".probe-*")
	if err != nil {
		return fmt.Errorf("vault is not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (v *FileSystemVault) snapshotPath(instanceID string) string {
	return filepath.Join(v.snapshotDir, instanceID+".db")
}

func (v *FileSystemVault) versionPath(instanceID string) string {
	return filepath.Join(v.snapshotDir, instanceID+".version")
}

// atomicWrite copies r into a temp file next to dest and renames it into place
// once exactly size bytes were written.
func atomicWrite(dest string, r io.Reader, size int64) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

var _ pulse.Vault = (*FileSystemVault)(nil)
