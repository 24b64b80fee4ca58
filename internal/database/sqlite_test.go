package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"pulse-go/internal/pulse"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) (*SQLiteDatabase, *fixedClock) {
	t.Helper()

	clock := &fixedClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	db, err := NewSQLiteDatabase(":memory:", clock)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if _, err := db.db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db, clock
}

func addAccount(t *testing.T, db *SQLiteDatabase, id, clientID string, platform pulse.Platform, active bool) *pulse.Account {
	t.Helper()
	acc := &pulse.Account{
		ID:                id,
		ClientID:          clientID,
		Platform:          platform,
		ExternalAccountID: "ext-" + id,
		AccessCredential:  sql.NullString{String: "token-" + id, Valid: true},
		IsActive:          active,
	}
	if err := db.CreateAccount(context.Background(), acc); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return acc
}

func metricFor(acc *pulse.Account, date string, followers int64) *pulse.MetricRecord {
	return &pulse.MetricRecord{
		ClientID:      acc.ClientID,
		AccountID:     acc.ID,
		Platform:      acc.Platform,
		Date:          date,
		Reach:         100,
		FollowerCount: followers,
		HealthScore:   42,
		HealthStatus:  pulse.HealthNeedsAttention,
		InsightText:   "insight",
	}
}

func TestSQLiteDatabase_Accounts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil when account not found", func(t *testing.T) {
		db, _ := newTestDB(t)

		acc, err := db.FindAccountByID(ctx, "missing")
		if err != nil {
			t.Fatalf("FindAccountByID() error = %v", err)
		}
		if acc != nil {
			t.Errorf("FindAccountByID() = %v, want nil", acc)
		}
	})

	t.Run("creates and finds account", func(t *testing.T) {
		db, _ := newTestDB(t)
		created := addAccount(t, db, "acc-1", "client-1", pulse.PlatformShortVideo, true)

		found, err := db.FindAccountByID(ctx, "acc-1")
		if err != nil {
			t.Fatalf("FindAccountByID() error = %v", err)
		}
		if found == nil {
			t.Fatal("FindAccountByID() returned nil")
		}
		if found.Platform != pulse.PlatformShortVideo || found.ClientID != "client-1" {
			t.Errorf("found = %+v", found)
		}
		if found.AccessCredential.String != "token-acc-1" {
			t.Errorf("AccessCredential = %q, want %q", found.AccessCredential.String, "token-acc-1")
		}
		if found.ConnectionStatus != pulse.StatusDisconnected {
			t.Errorf("ConnectionStatus = %s, want %s", found.ConnectionStatus, pulse.StatusDisconnected)
		}
		if found.LastSync.Valid {
			t.Error("LastSync should be null for a new account")
		}
		if !found.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", found.CreatedAt, created.CreatedAt)
		}
	})

	t.Run("rejects account without id", func(t *testing.T) {
		db, _ := newTestDB(t)
		if err := db.CreateAccount(ctx, &pulse.Account{ClientID: "c"}); err == nil {
			t.Error("CreateAccount() expected error for empty id")
		}
	})

	t.Run("lists active accounts by client and platform", func(t *testing.T) {
		db, _ := newTestDB(t)
		addAccount(t, db, "a1", "client-1", pulse.PlatformShortVideo, true)
		addAccount(t, db, "a2", "client-1", pulse.PlatformVideoChannel, true)
		addAccount(t, db, "a3", "client-2", pulse.PlatformShortVideo, true)
		addAccount(t, db, "a4", "client-1", pulse.PlatformShortVideo, false)

		all, err := db.ListActiveAccounts(ctx, "")
		if err != nil {
			t.Fatalf("ListActiveAccounts() error = %v", err)
		}
		if len(all) != 3 {
			t.Errorf("ListActiveAccounts(\"\") returned %d accounts, want 3", len(all))
		}

		scoped, err := db.ListActiveAccounts(ctx, "client-1")
		if err != nil {
			t.Fatalf("ListActiveAccounts() error = %v", err)
		}
		if len(scoped) != 2 {
			t.Errorf("ListActiveAccounts(client-1) returned %d accounts, want 2", len(scoped))
		}

		short, err := db.ListActiveAccountsByPlatform(ctx, pulse.PlatformShortVideo, "")
		if err != nil {
			t.Fatalf("ListActiveAccountsByPlatform() error = %v", err)
		}
		if len(short) != 2 {
			t.Errorf("ListActiveAccountsByPlatform(ShortVideo) returned %d, want 2", len(short))
		}

		shortScoped, err := db.ListActiveAccountsByPlatform(ctx, pulse.PlatformShortVideo, "client-2")
		if err != nil {
			t.Fatalf("ListActiveAccountsByPlatform() error = %v", err)
		}
		if len(shortScoped) != 1 || shortScoped[0].ID != "a3" {
			t.Errorf("ListActiveAccountsByPlatform(ShortVideo, client-2) = %v, want [a3]", shortScoped)
		}

		everything, err := db.ListAccounts(ctx)
		if err != nil {
			t.Fatalf("ListAccounts() error = %v", err)
		}
		if len(everything) != 4 {
			t.Errorf("ListAccounts() returned %d, want 4", len(everything))
		}
	})

	t.Run("marks account synced", func(t *testing.T) {
		db, clock := newTestDB(t)
		addAccount(t, db, "acc-1", "client-1", pulse.PlatformShortVideo, true)

		if err := db.MarkSynced(ctx, "acc-1", clock.now); err != nil {
			t.Fatalf("MarkSynced() error = %v", err)
		}

		acc, err := db.FindAccountByID(ctx, "acc-1")
		if err != nil {
			t.Fatalf("FindAccountByID() error = %v", err)
		}
		if !acc.LastSync.Valid || !acc.LastSync.Time.Equal(clock.now) {
			t.Errorf("LastSync = %v, want %v", acc.LastSync, clock.now)
		}
		if acc.ConnectionStatus != pulse.StatusConnected {
			t.Errorf("ConnectionStatus = %s, want %s", acc.ConnectionStatus, pulse.StatusConnected)
		}
	})
}

func TestSQLiteDatabase_MetricStore(t *testing.T) {
	ctx := context.Background()

	t.Run("append assigns id and keeps every row", func(t *testing.T) {
		db, clock := newTestDB(t)
		acc := addAccount(t, db, "acc-1", "client-1", pulse.PlatformImageVideoA, true)

		first := metricFor(acc, "2024-01-15", 500)
		second := metricFor(acc, "2024-01-15", 510)
		if err := db.Append(ctx, first); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := db.Append(ctx, second); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		if first.ID == 0 || second.ID <= first.ID {
			t.Errorf("IDs = %d, %d, want increasing non-zero", first.ID, second.ID)
		}
		if !first.CreatedAt.Equal(clock.now) {
			t.Errorf("CreatedAt = %v, want %v", first.CreatedAt, clock.now)
		}

		records, err := db.ListMetrics(ctx, acc.ID, 10)
		if err != nil {
			t.Fatalf("ListMetrics() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("ListMetrics() returned %d records, want 2", len(records))
		}
	})

	t.Run("append fails for unknown account", func(t *testing.T) {
		db, _ := newTestDB(t)
		orphan := &pulse.Account{ID: "ghost", ClientID: "c", Platform: pulse.PlatformShortVideo}
		if err := db.Append(ctx, metricFor(orphan, "2024-01-15", 1)); err == nil {
			t.Error("Append() expected foreign key error")
		}
	})

	t.Run("most recent returns nil without history", func(t *testing.T) {
		db, _ := newTestDB(t)
		acc := addAccount(t, db, "acc-1", "client-1", pulse.PlatformShortVideo, true)

		got, err := db.MostRecentBefore(ctx, acc.ID, acc.Platform, nil)
		if err != nil {
			t.Fatalf("MostRecentBefore() error = %v", err)
		}
		if got != nil {
			t.Errorf("MostRecentBefore() = %+v, want nil", got)
		}
	})

	t.Run("most recent orders by date then insertion", func(t *testing.T) {
		db, _ := newTestDB(t)
		acc := addAccount(t, db, "acc-1", "client-1", pulse.PlatformShortVideo, true)

		for _, r := range []*pulse.MetricRecord{
			metricFor(acc, "2024-01-14", 100),
			metricFor(acc, "2024-01-15", 200),
			metricFor(acc, "2024-01-15", 300),
			metricFor(acc, "2024-01-13", 400),
		} {
			if err := db.Append(ctx, r); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
		}

		got, err := db.MostRecentBefore(ctx, acc.ID, acc.Platform, nil)
		if err != nil {
			t.Fatalf("MostRecentBefore() error = %v", err)
		}
		if got == nil || got.FollowerCount != 300 {
			t.Errorf("MostRecentBefore(nil) = %+v, want the second 2024-01-15 record", got)
		}

		cutoff := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
		got, err = db.MostRecentBefore(ctx, acc.ID, acc.Platform, &cutoff)
		if err != nil {
			t.Fatalf("MostRecentBefore() error = %v", err)
		}
		if got == nil || got.Date != "2024-01-14" {
			t.Errorf("MostRecentBefore(2024-01-15) = %+v, want the 2024-01-14 record", got)
		}

		early := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
		got, err = db.MostRecentBefore(ctx, acc.ID, acc.Platform, &early)
		if err != nil {
			t.Fatalf("MostRecentBefore() error = %v", err)
		}
		if got != nil {
			t.Errorf("MostRecentBefore(2024-01-13) = %+v, want nil", got)
		}
	})

	t.Run("most recent is scoped to the platform", func(t *testing.T) {
		db, _ := newTestDB(t)
		acc := addAccount(t, db, "acc-1", "client-1", pulse.PlatformShortVideo, true)
		if err := db.Append(ctx, metricFor(acc, "2024-01-15", 100)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		got, err := db.MostRecentBefore(ctx, acc.ID, pulse.PlatformVideoChannel, nil)
		if err != nil {
			t.Fatalf("MostRecentBefore() error = %v", err)
		}
		if got != nil {
			t.Errorf("MostRecentBefore(VideoChannel) = %+v, want nil", got)
		}
	})

	t.Run("round trips every field", func(t *testing.T) {
		db, _ := newTestDB(t)
		acc := addAccount(t, db, "acc-1", "client-1", pulse.PlatformVideoChannel, true)

		want := &pulse.MetricRecord{
			ClientID: "client-1", AccountID: acc.ID, Platform: acc.Platform, Date: "2024-01-15",
			Reach: 1000, EngagementRate: 3.5, FollowerCount: 520, NetFollowerChange: -4,
			LinkClicks: 1, ProfileVisits: 2, Saves: 3, Shares: 4, Comments: 5, Likes: 6, Impressions: 7,
			TopPostReach: 8,
			TopPostURL:   sql.NullString{String: "https://example.com/v/1", Valid: true},
			TopPostType:  sql.NullString{String: "video", Valid: true},
			HealthScore:  61, HealthStatus: pulse.HealthStable, InsightText: "hello",
		}
		if err := db.Append(ctx, want); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		got, err := db.MostRecentBefore(ctx, acc.ID, acc.Platform, nil)
		if err != nil {
			t.Fatalf("MostRecentBefore() error = %v", err)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
		}
		got.CreatedAt = want.CreatedAt
		if *got != *want {
			t.Errorf("MostRecentBefore() = %+v, want %+v", got, want)
		}
	})

	t.Run("list metrics honors limit and order", func(t *testing.T) {
		db, _ := newTestDB(t)
		acc := addAccount(t, db, "acc-1", "client-1", pulse.PlatformShortVideo, true)
		for _, d := range []string{"2024-01-10", "2024-01-12", "2024-01-11"} {
			if err := db.Append(ctx, metricFor(acc, d, 1)); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
		}

		records, err := db.ListMetrics(ctx, acc.ID, 2)
		if err != nil {
			t.Fatalf("ListMetrics() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("ListMetrics() returned %d, want 2", len(records))
		}
		if records[0].Date != "2024-01-12" || records[1].Date != "2024-01-11" {
			t.Errorf("ListMetrics() dates = %s, %s, want 2024-01-12, 2024-01-11", records[0].Date, records[1].Date)
		}
	})
}

func TestSQLiteDatabase_Operations(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	maxID, err := db.MaxOperationID(ctx)
	if err != nil {
		t.Fatalf("MaxOperationID() error = %v", err)
	}
	if maxID != 0 {
		t.Errorf("MaxOperationID() on empty log = %d, want 0", maxID)
	}

	op, err := db.CreateOperation(ctx, "sync", "--all")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if op.Status != "running" {
		t.Errorf("Status = %q, want %q", op.Status, "running")
	}

	if err := db.FinishOperation(ctx, op.ID, "success"); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}
	if _, err := db.CreateOperation(ctx, "account add", "acc-1"); err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	ops, err := db.ListOperations(ctx, 10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("ListOperations() returned %d, want 2", len(ops))
	}
	if ops[0].Operation != "account add" {
		t.Errorf("ops[0].Operation = %q, want newest first", ops[0].Operation)
	}
	if ops[1].Status != "success" || !ops[1].FinishedAt.Valid {
		t.Errorf("ops[1] = %+v, want finished success", ops[1])
	}

	maxID, err = db.MaxOperationID(ctx)
	if err != nil {
		t.Fatalf("MaxOperationID() error = %v", err)
	}
	if maxID != ops[0].ID {
		t.Errorf("MaxOperationID() = %d, want %d", maxID, ops[0].ID)
	}
}

func TestSQLiteDatabase_BackupTo(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	addAccount(t, db, "acc-1", "client-1", pulse.PlatformShortVideo, true)

	dest := filepath.Join(t.TempDir(), "backup.db")
	if err := db.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	restored, err := NewSQLiteDatabase(dest, nil)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	defer restored.Close()

	acc, err := restored.FindAccountByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("FindAccountByID() error = %v", err)
	}
	if acc == nil {
		t.Error("backup is missing account acc-1")
	}
}
