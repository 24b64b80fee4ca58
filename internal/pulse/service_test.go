package pulse_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pulse-go/internal/database"
	"pulse-go/internal/encryption"
	"pulse-go/internal/pulse"
	"pulse-go/internal/testutil"
)

type fixture struct {
	db      *database.SQLiteDatabase
	clock   *testutil.StubClock
	adapter *testutil.FakeAdapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.FixedClock()
	return &fixture{
		db:      testutil.NewTestDatabase(t, clock),
		clock:   clock,
		adapter: testutil.NewFakeAdapter(pulse.PlatformImageVideoA, testutil.SampleSnapshot(500)),
	}
}

func (f *fixture) service(opts pulse.SyncOptions, adapters ...pulse.Adapter) *pulse.Service {
	if len(adapters) == 0 {
		adapters = []pulse.Adapter{f.adapter}
	}
	return pulse.NewService(f.db, f.db, pulse.NewAdapters(adapters...), nil, pulse.NewNopLogger(), f.clock, nil, opts)
}

func fastOptions() pulse.SyncOptions {
	opts := pulse.DefaultSyncOptions()
	opts.AccountTimeout = time.Second
	opts.RetryBackoff = time.Millisecond
	return opts
}

func TestService_SyncOne(t *testing.T) {
	t.Run("first sync stores a baseline record and marks the account", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)
		svc := f.service(fastOptions())

		rec, err := svc.SyncOne(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("SyncOne() error = %v", err)
		}

		if rec.ID == 0 {
			t.Error("record ID not assigned")
		}
		if rec.AccountID != "acc-1" || rec.ClientID != "client-1" || rec.Platform != pulse.PlatformImageVideoA {
			t.Errorf("identity = %s/%s/%s", rec.AccountID, rec.ClientID, rec.Platform)
		}
		if rec.Date != "2024-01-15" {
			t.Errorf("Date = %q, want %q", rec.Date, "2024-01-15")
		}
		if rec.NetFollowerChange != 0 {
			t.Errorf("NetFollowerChange = %d, want 0 on first sync", rec.NetFollowerChange)
		}
		if rec.EngagementRate != 3.0 {
			t.Errorf("EngagementRate = %v, want 3.0", rec.EngagementRate)
		}
		if rec.HealthScore < 0 || rec.HealthScore > 100 {
			t.Errorf("HealthScore = %d out of range", rec.HealthScore)
		}

		account, err := f.db.FindAccountByID(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("FindAccountByID() error = %v", err)
		}
		if account.ConnectionStatus != pulse.StatusConnected {
			t.Errorf("ConnectionStatus = %q, want Connected", account.ConnectionStatus)
		}
		if !account.LastSync.Valid || !account.LastSync.Time.Equal(f.clock.Now()) {
			t.Errorf("LastSync = %v, want %v", account.LastSync, f.clock.Now())
		}
	})

	t.Run("second sync keeps both records and measures growth", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)
		svc := f.service(fastOptions())

		if _, err := svc.SyncOne(context.Background(), "acc-1"); err != nil {
			t.Fatalf("first SyncOne() error = %v", err)
		}

		f.adapter.Snapshot = testutil.SampleSnapshot(520)
		second, err := svc.SyncOne(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("second SyncOne() error = %v", err)
		}

		if second.NetFollowerChange != 20 {
			t.Errorf("NetFollowerChange = %d, want 20", second.NetFollowerChange)
		}
		if second.HealthScore < 50 {
			t.Errorf("HealthScore = %d, want >= 50", second.HealthScore)
		}

		records, err := f.db.ListMetrics(context.Background(), "acc-1", 10)
		if err != nil {
			t.Fatalf("ListMetrics() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("stored records = %d, want 2", len(records))
		}
		if records[0].ID == records[1].ID {
			t.Error("records should be distinct")
		}
	})

	t.Run("empty account id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service(fastOptions()).SyncOne(context.Background(), "  ")
		if !errors.Is(err, pulse.ErrValidation) {
			t.Errorf("SyncOne() error = %v, want validation error", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service(fastOptions()).SyncOne(context.Background(), "missing")
		if !errors.Is(err, pulse.ErrNotFound) {
			t.Errorf("SyncOne() error = %v, want not found", err)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.Platform("Fax"))

		_, err := f.service(fastOptions()).SyncOne(context.Background(), "acc-1")
		if !errors.Is(err, pulse.ErrNotFound) {
			t.Fatalf("SyncOne() error = %v, want not found", err)
		}
		if !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("SyncOne() error = %q, want unsupported platform message", err.Error())
		}
	})

	t.Run("empty credential fails before any adapter call", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA, testutil.WithCredential(""))

		_, err := f.service(fastOptions()).SyncOne(context.Background(), "acc-1")
		if !errors.Is(err, pulse.ErrConfiguration) {
			t.Fatalf("SyncOne() error = %v, want configuration error", err)
		}
		if f.adapter.Calls() != 0 {
			t.Errorf("adapter calls = %d, want 0", f.adapter.Calls())
		}
	})

	t.Run("adapter failure leaves no trace", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)
		f.adapter.Err = pulse.UpstreamError(pulse.PlatformImageVideoA, "token expired")

		_, err := f.service(fastOptions()).SyncOne(context.Background(), "acc-1")
		if !errors.Is(err, pulse.ErrUpstream) {
			t.Fatalf("SyncOne() error = %v, want upstream error", err)
		}

		records, _ := f.db.ListMetrics(context.Background(), "acc-1", 10)
		if len(records) != 0 {
			t.Errorf("stored records = %d, want 0", len(records))
		}
		account, _ := f.db.FindAccountByID(context.Background(), "acc-1")
		if account.ConnectionStatus != pulse.StatusDisconnected || account.LastSync.Valid {
			t.Errorf("account modified after failure: status=%q last_sync=%v", account.ConnectionStatus, account.LastSync)
		}
	})

	t.Run("sealed credential is revealed for the adapter", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA,
			testutil.WithCredential(testutil.SealedCredential(t, "secret-token")))

		var got string
		f.adapter.FetchFunc = func(_ context.Context, _ *pulse.Account, credential string) (*pulse.Snapshot, error) {
			got = credential
			return testutil.SampleSnapshot(1), nil
		}

		creds := encryption.NewSealedCredentials(encryption.TestDecryptionContext{})
		svc := pulse.NewService(f.db, f.db, pulse.NewAdapters(f.adapter), creds, pulse.NewNopLogger(), f.clock, nil, fastOptions())
		if _, err := svc.SyncOne(context.Background(), "acc-1"); err != nil {
			t.Fatalf("SyncOne() error = %v", err)
		}
		if got != "secret-token" {
			t.Errorf("adapter credential = %q, want %q", got, "secret-token")
		}
	})

	t.Run("unreadable credential is a configuration error", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)

		svc := pulse.NewService(f.db, f.db, pulse.NewAdapters(f.adapter), failingCredentials{}, pulse.NewNopLogger(), f.clock, nil, fastOptions())
		_, err := svc.SyncOne(context.Background(), "acc-1")
		if !errors.Is(err, pulse.ErrConfiguration) {
			t.Fatalf("SyncOne() error = %v, want configuration error", err)
		}
		if f.adapter.Calls() != 0 {
			t.Errorf("adapter calls = %d, want 0", f.adapter.Calls())
		}
	})

	t.Run("failed status update does not fail the sync", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)

		registry := failingMarkSynced{AccountRegistry: f.db}
		svc := pulse.NewService(registry, f.db, pulse.NewAdapters(f.adapter), nil, pulse.NewNopLogger(), f.clock, nil, fastOptions())
		rec, err := svc.SyncOne(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("SyncOne() error = %v", err)
		}
		if rec.ID == 0 {
			t.Error("record should be stored")
		}
	})
}

func TestService_SyncOne_Retry(t *testing.T) {
	t.Run("retries retryable errors up to max attempts", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)

		var calls atomic.Int32
		f.adapter.FetchFunc = func(context.Context, *pulse.Account, string) (*pulse.Snapshot, error) {
			if calls.Add(1) < 3 {
				return nil, pulse.TransportError(pulse.PlatformImageVideoA, errors.New("connection reset"))
			}
			return testutil.SampleSnapshot(500), nil
		}

		opts := fastOptions()
		opts.MaxAttempts = 3
		if _, err := f.service(opts).SyncOne(context.Background(), "acc-1"); err != nil {
			t.Fatalf("SyncOne() error = %v", err)
		}
		if f.adapter.Calls() != 3 {
			t.Errorf("adapter calls = %d, want 3", f.adapter.Calls())
		}
	})

	t.Run("does not retry by default", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)
		f.adapter.Err = pulse.TransportError(pulse.PlatformImageVideoA, errors.New("connection reset"))

		if _, err := f.service(fastOptions()).SyncOne(context.Background(), "acc-1"); err == nil {
			t.Fatal("SyncOne() expected error")
		}
		if f.adapter.Calls() != 1 {
			t.Errorf("adapter calls = %d, want 1", f.adapter.Calls())
		}
	})

	t.Run("does not retry non-retryable errors", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)
		f.adapter.Err = pulse.NotFoundError(pulse.PlatformImageVideoA, "platform mismatch")

		opts := fastOptions()
		opts.MaxAttempts = 5
		if _, err := f.service(opts).SyncOne(context.Background(), "acc-1"); !errors.Is(err, pulse.ErrNotFound) {
			t.Fatalf("SyncOne() error = %v, want not found", err)
		}
		if f.adapter.Calls() != 1 {
			t.Errorf("adapter calls = %d, want 1", f.adapter.Calls())
		}
	})
}

func TestService_SyncOne_Timeout(t *testing.T) {
	f := newFixture(t)
	testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)
	f.adapter.FetchFunc = func(ctx context.Context, _ *pulse.Account, _ string) (*pulse.Snapshot, error) {
		<-ctx.Done()
		return nil, pulse.TransportError(pulse.PlatformImageVideoA, ctx.Err())
	}

	opts := fastOptions()
	opts.AccountTimeout = 20 * time.Millisecond
	_, err := f.service(opts).SyncOne(context.Background(), "acc-1")
	if !errors.Is(err, pulse.ErrTransport) {
		t.Fatalf("SyncOne() error = %v, want transport error", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("SyncOne() error = %v, want deadline exceeded", err)
	}
}

func TestService_SyncMany(t *testing.T) {
	t.Run("N accounts with K failures", func(t *testing.T) {
		f := newFixture(t)
		failing := testutil.NewFakeAdapter(pulse.PlatformVideoChannel, nil)
		failing.Err = pulse.UpstreamError(pulse.PlatformVideoChannel, "quota exceeded")

		for i := 1; i <= 3; i++ {
			testutil.AddAccount(t, f.db, fmt.Sprintf("ok-%d", i), pulse.PlatformImageVideoA)
		}
		for i := 1; i <= 2; i++ {
			testutil.AddAccount(t, f.db, fmt.Sprintf("bad-%d", i), pulse.PlatformVideoChannel)
		}

		batch, err := f.service(fastOptions(), f.adapter, failing).SyncMany(context.Background(), pulse.SyncFilter{})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}

		if batch.Synced != 3 || batch.Failed != 2 {
			t.Errorf("synced/failed = %d/%d, want 3/2", batch.Synced, batch.Failed)
		}
		if batch.Total() != 5 {
			t.Errorf("Total() = %d, want 5", batch.Total())
		}
		for _, r := range batch.Results {
			if !r.Success || r.Metrics == nil {
				t.Errorf("result %s should be a success with metrics", r.AccountID)
			}
		}
		for _, r := range batch.Errors {
			if r.Success || !strings.Contains(r.Error, "quota exceeded") {
				t.Errorf("error entry %s = %+v", r.AccountID, r)
			}
		}
	})

	t.Run("unsupported platform is recorded without halting the batch", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "good", pulse.PlatformImageVideoA)
		testutil.AddAccount(t, f.db, "odd", pulse.Platform("Fax"))

		batch, err := f.service(fastOptions()).SyncMany(context.Background(), pulse.SyncFilter{})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Synced != 1 || batch.Failed != 1 {
			t.Fatalf("synced/failed = %d/%d, want 1/1", batch.Synced, batch.Failed)
		}
		if batch.Errors[0].AccountID != "odd" || !strings.Contains(batch.Errors[0].Error, "unsupported platform") {
			t.Errorf("error entry = %+v", batch.Errors[0])
		}
	})

	t.Run("scopes to one client and skips inactive accounts", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "mine", pulse.PlatformImageVideoA, testutil.WithClient("client-a"))
		testutil.AddAccount(t, f.db, "theirs", pulse.PlatformImageVideoA, testutil.WithClient("client-b"))
		testutil.AddAccount(t, f.db, "dormant", pulse.PlatformImageVideoA, testutil.WithClient("client-a"), testutil.Inactive())

		batch, err := f.service(fastOptions()).SyncMany(context.Background(), pulse.SyncFilter{ClientID: "client-a"})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Total() != 1 || batch.Results[0].AccountID != "mine" {
			t.Errorf("batch = %+v, want only account mine", batch)
		}
	})

	t.Run("scopes to one platform", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "photos", pulse.PlatformImageVideoA, testutil.WithClient("client-a"))
		testutil.AddAccount(t, f.db, "other-client", pulse.PlatformImageVideoA, testutil.WithClient("client-b"))
		testutil.AddAccount(t, f.db, "channel", pulse.PlatformVideoChannel, testutil.WithClient("client-a"))

		batch, err := f.service(fastOptions()).SyncMany(context.Background(), pulse.SyncFilter{Platform: pulse.PlatformImageVideoA})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Total() != 2 || batch.Synced != 2 {
			t.Errorf("batch = %+v, want both ImageVideo-A accounts", batch)
		}

		batch, err = f.service(fastOptions()).SyncMany(context.Background(), pulse.SyncFilter{ClientID: "client-a", Platform: pulse.PlatformImageVideoA})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Total() != 1 || batch.Results[0].AccountID != "photos" {
			t.Errorf("batch = %+v, want only account photos", batch)
		}
	})

	t.Run("unknown platform filter is a validation error", func(t *testing.T) {
		f := newFixture(t)
		testutil.AddAccount(t, f.db, "photos", pulse.PlatformImageVideoA)

		_, err := f.service(fastOptions()).SyncMany(context.Background(), pulse.SyncFilter{Platform: "Fax"})
		if !errors.Is(err, pulse.ErrValidation) {
			t.Fatalf("SyncMany() error = %v, want validation error", err)
		}
		if got := f.adapter.Calls(); got != 0 {
			t.Errorf("adapter calls = %d, want 0", got)
		}
	})

	t.Run("empty candidate set", func(t *testing.T) {
		f := newFixture(t)
		batch, err := f.service(fastOptions()).SyncMany(context.Background(), pulse.SyncFilter{})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Total() != 0 || batch.Results == nil || batch.Errors == nil {
			t.Errorf("batch = %+v, want empty non-nil slices", batch)
		}
	})

	t.Run("a panicking adapter fails only its account", func(t *testing.T) {
		f := newFixture(t)
		boom := testutil.NewFakeAdapter(pulse.PlatformShortVideo, nil)
		boom.FetchFunc = func(context.Context, *pulse.Account, string) (*pulse.Snapshot, error) {
			panic("nil map")
		}
		testutil.AddAccount(t, f.db, "good", pulse.PlatformImageVideoA)
		testutil.AddAccount(t, f.db, "bad", pulse.PlatformShortVideo)

		batch, err := f.service(fastOptions(), f.adapter, boom).SyncMany(context.Background(), pulse.SyncFilter{})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Synced != 1 || batch.Failed != 1 {
			t.Fatalf("synced/failed = %d/%d, want 1/1", batch.Synced, batch.Failed)
		}
		if !strings.Contains(batch.Errors[0].Error, "panicked") {
			t.Errorf("error = %q, want panic message", batch.Errors[0].Error)
		}
	})

	t.Run("canceled context fails every account without storing", func(t *testing.T) {
		f := newFixture(t)
		for i := 1; i <= 4; i++ {
			testutil.AddAccount(t, f.db, fmt.Sprintf("acc-%d", i), pulse.PlatformImageVideoA)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Listing runs on the canceled context too, so it goes through a registry that ignores ctx.
		registry := ignoreCtxRegistry{AccountRegistry: f.db}
		svc := pulse.NewService(registry, f.db, pulse.NewAdapters(f.adapter), nil, pulse.NewNopLogger(), f.clock, nil, fastOptions())
		batch, err := svc.SyncMany(ctx, pulse.SyncFilter{})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Failed != 4 || batch.Synced != 0 {
			t.Errorf("synced/failed = %d/%d, want 0/4", batch.Synced, batch.Failed)
		}
		if f.adapter.Calls() != 0 {
			t.Errorf("adapter calls = %d, want 0", f.adapter.Calls())
		}
		for i := 1; i <= 4; i++ {
			records, _ := f.db.ListMetrics(context.Background(), fmt.Sprintf("acc-%d", i), 10)
			if len(records) != 0 {
				t.Errorf("acc-%d has %d records, want 0", i, len(records))
			}
		}
	})

	t.Run("runs accounts concurrently up to the worker limit", func(t *testing.T) {
		f := newFixture(t)
		for i := 1; i <= 6; i++ {
			testutil.AddAccount(t, f.db, fmt.Sprintf("acc-%d", i), pulse.PlatformImageVideoA)
		}

		var mu sync.Mutex
		inFlight, peak := 0, 0
		f.adapter.FetchFunc = func(context.Context, *pulse.Account, string) (*pulse.Snapshot, error) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return testutil.SampleSnapshot(100), nil
		}

		opts := fastOptions()
		opts.Workers = 2
		batch, err := f.service(opts).SyncMany(context.Background(), pulse.SyncFilter{})
		if err != nil {
			t.Fatalf("SyncMany() error = %v", err)
		}
		if batch.Synced != 6 {
			t.Errorf("Synced = %d, want 6", batch.Synced)
		}
		if peak > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", peak)
		}
	})

	t.Run("listing failure fails the batch", func(t *testing.T) {
		f := newFixture(t)
		registry := failingList{AccountRegistry: f.db}
		svc := pulse.NewService(registry, f.db, pulse.NewAdapters(f.adapter), nil, pulse.NewNopLogger(), f.clock, nil, fastOptions())

		if _, err := svc.SyncMany(context.Background(), pulse.SyncFilter{}); err == nil {
			t.Fatal("SyncMany() expected error")
		}
	})
}

func TestService_Recorder(t *testing.T) {
	f := newFixture(t)
	testutil.AddAccount(t, f.db, "good", pulse.PlatformImageVideoA)
	testutil.AddAccount(t, f.db, "odd", pulse.Platform("Fax"))

	rec := &countingRecorder{}
	svc := pulse.NewService(f.db, f.db, pulse.NewAdapters(f.adapter), nil, pulse.NewNopLogger(), f.clock, rec, fastOptions())
	if _, err := svc.SyncMany(context.Background(), pulse.SyncFilter{}); err != nil {
		t.Fatalf("SyncMany() error = %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.outcomes[pulse.OutcomeSuccess] != 1 || rec.outcomes[pulse.OutcomeFailure] != 1 {
		t.Errorf("outcomes = %v, want one of each", rec.outcomes)
	}
	if rec.batches != 1 {
		t.Errorf("batches = %d, want 1", rec.batches)
	}
}

func TestService_ListMetrics(t *testing.T) {
	f := newFixture(t)
	testutil.AddAccount(t, f.db, "acc-1", pulse.PlatformImageVideoA)
	svc := f.service(fastOptions())

	for i := 0; i < 3; i++ {
		if _, err := svc.SyncOne(context.Background(), "acc-1"); err != nil {
			t.Fatalf("SyncOne() error = %v", err)
		}
		f.clock.NextDay()
	}

	records, err := svc.ListMetrics(context.Background(), "acc-1", 2)
	if err != nil {
		t.Fatalf("ListMetrics() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListMetrics() returned %d records, want 2", len(records))
	}
	if records[0].Date != "2024-01-17" || records[1].Date != "2024-01-16" {
		t.Errorf("dates = %s, %s; want newest first", records[0].Date, records[1].Date)
	}

	if _, err := svc.ListMetrics(context.Background(), "", 0); !errors.Is(err, pulse.ErrValidation) {
		t.Errorf("ListMetrics(\"\") error = %v, want validation error", err)
	}
	if _, err := svc.ListMetrics(context.Background(), "nope", 0); !errors.Is(err, pulse.ErrNotFound) {
		t.Errorf("ListMetrics(nope) error = %v, want not found", err)
	}
}

type failingCredentials struct{}

func (failingCredentials) Reveal(string) (string, error) {
	return "", errors.New("no identity matched")
}

type failingMarkSynced struct {
	pulse.AccountRegistry
}

func (failingMarkSynced) MarkSynced(context.Context, string, time.Time) error {
	return errors.New("database is locked")
}

type failingList struct {
	pulse.AccountRegistry
}

func (failingList) ListActiveAccounts(context.Context, string) ([]*pulse.Account, error) {
	return nil, errors.New("database is locked")
}

type ignoreCtxRegistry struct {
	pulse.AccountRegistry
}

func (r ignoreCtxRegistry) ListActiveAccounts(_ context.Context, clientID string) ([]*pulse.Account, error) {
	return r.AccountRegistry.ListActiveAccounts(context.Background(), clientID)
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	batches  int
}

func (r *countingRecorder) RecordSync(_ pulse.Platform, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	r.outcomes[outcome]++
}

func (r *countingRecorder) RecordBatch(int, int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
}
