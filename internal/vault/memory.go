package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"pulse-go/internal/pulse"
)

type memorySnapshot struct {
	data    []byte
	version int64
}

// MemoryVault keeps snapshots in memory. Safe for concurrent use.
type MemoryVault struct {
	name      string
	mu        sync.RWMutex
	snapshots map[string]memorySnapshot
}

func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string]memorySnapshot),
	}
}

func (m *MemoryVault) Name() string { return m.name }

func (m *MemoryVault) PutSnapshot(_ context.Context, instanceID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[instanceID] = memorySnapshot{data: data, version: version}
	return nil
}

func (m *MemoryVault) GetSnapshot(_ context.Context, instanceID string, w io.Writer) error {
	m.mu.RLock()
	snap, ok := m.snapshots[instanceID]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("snapshot not found for instance: %s", instanceID)
	}
	if _, err := io.Copy(w, bytes.NewReader(snap.data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (m *MemoryVault) SnapshotVersion(_ context.Context, instanceID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[instanceID].version, nil
}

func (m *MemoryVault) ValidateSetup(context.Context) error { return nil }

var _ pulse.Vault = (*MemoryVault)(nil)
