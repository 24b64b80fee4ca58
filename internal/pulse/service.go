package pulse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// SyncOptions tunes the orchestrator.
type SyncOptions struct {
	// Workers bounds how many accounts SyncMany processes at once.
	Workers int
	// AccountTimeout bounds one adapter fetch. Zero disables the bound.
	AccountTimeout time.Duration
	// MaxAttempts is the number of fetch attempts for retryable failures. 1 disables retry.
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number between attempts.
	RetryBackoff time.Duration
}

// DefaultSyncOptions returns the options used when config leaves them unset.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		Workers:        5,
		AccountTimeout: 60 * time.Second,
		MaxAttempts:    1,
		RetryBackoff:   2 * time.Second,
	}
}

// Service is the sync orchestrator. It resolves accounts, dispatches to the
// matching adapter, scores the snapshot and persists the result.
type Service struct {
	accounts    AccountRegistry
	store       MetricStore
	adapters    Adapters
	credentials CredentialSource
	logger      Logger
	clock       Clock
	recorder    Recorder
	opts        SyncOptions
}

// NewService creates a Service. A nil credentials source treats stored
// credentials as plaintext; a nil recorder discards observations.
func NewService(accounts AccountRegistry, store MetricStore, adapters Adapters, credentials CredentialSource, logger Logger, clock Clock, recorder Recorder, opts SyncOptions) *Service {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if credentials == nil {
		credentials = PlaintextCredentials{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Service{
		accounts:    accounts,
		store:       store,
		adapters:    adapters,
		credentials: credentials,
		logger:      logger,
		clock:       clock,
		recorder:    recorder,
		opts:        opts,
	}
}

// SyncOne syncs a single account and returns the stored record.
// Errors are returned verbatim and carry one of the Err* kinds.
func (s *Service) SyncOne(ctx context.Context, accountID string) (*MetricRecord, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, ValidationError("account id is required")
	}

	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if account == nil {
		return nil, NotFoundError("", "account not found: %s", accountID)
	}

	return s.syncAccount(ctx, account)
}

// SyncMany syncs every active account matching filter. Per-account failures
// are collected, never returned; the error result only reports an unknown
// platform in filter or a failure to list the candidate accounts.
func (s *Service) SyncMany(ctx context.Context, filter SyncFilter) (*BatchSyncResult, error) {
	start := time.Now()
	clientID := strings.TrimSpace(filter.ClientID)
	platform := Platform(strings.TrimSpace(string(filter.Platform)))
	if platform != "" && !platform.Known() {
		return nil, ValidationError("unknown platform %q", string(platform))
	}

	var accounts []*Account
	var err error
	if platform == "" {
		accounts, err = s.accounts.ListActiveAccounts(ctx, clientID)
	} else {
		accounts, err = s.accounts.ListActiveAccountsByPlatform(ctx, platform, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing active accounts: %w", err)
	}
	s.logger.Info("batch sync started", "accounts", len(accounts), "client", clientID, "platform", string(platform), "workers", s.opts.Workers)

	// One slot per candidate; each task writes only its own slot.
	results := make([]SyncResult, len(accounts))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			results[i] = s.syncTask(ctx, account)
			return nil
		})
	}
	_ = g.Wait()

	batch := collectResults(results)
	s.recorder.RecordBatch(batch.Synced, batch.Failed, time.Since(start))
	s.logger.Info("batch sync finished", "synced", batch.Synced, "failed", batch.Failed)
	return batch, nil
}

// ListMetrics returns the stored history of an account, newest first.
func (s *Service) ListMetrics(ctx context.Context, accountID string, limit int) ([]*MetricRecord, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, ValidationError("account id is required")
	}
	if limit <= 0 {
		limit = 30
	}

	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if account == nil {
		return nil, NotFoundError("", "account not found: %s", accountID)
	}

	records, err := s.store.ListMetrics(ctx, account.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing metrics: %w", err)
	}
	return records, nil
}

// syncTask runs one account inside the batch pool and converts every failure,
// including a panic in an adapter, into a failed SyncResult.
func (s *Service) syncTask(ctx context.Context, account *Account) (res SyncResult) {
	res = SyncResult{AccountID: account.ID, Platform: account.Platform}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("account sync panicked", "account", account.ID, "panic", r)
			res.Success = false
			res.Metrics = nil
			res.Error = fmt.Sprintf("sync panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Error = fmt.Sprintf("sync canceled: %v", err)
		return res
	}

	rec, err := s.syncAccount(ctx, account)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.Metrics = rec
	return res
}

// syncAccount drives one account through
// Pending -> Fetching -> Scored -> Persisted -> Success, or Failed.
func (s *Service) syncAccount(ctx context.Context, account *Account) (*MetricRecord, error) {
	start := time.Now()
	rec, err := s.runSync(ctx, account)
	if err != nil {
		s.logger.Warn("account sync failed", "account", account.ID, "platform", string(account.Platform), "state", "failed", "error", err)
		s.recorder.RecordSync(account.Platform, OutcomeFailure, time.Since(start))
		return nil, err
	}
	s.recorder.RecordSync(account.Platform, OutcomeSuccess, time.Since(start))
	return rec, nil
}

func (s *Service) runSync(ctx context.Context, account *Account) (*MetricRecord, error) {
	s.logger.Debug("sync state", "account", account.ID, "state", "pending")

	adapter, err := s.adapters.Lookup(account.Platform)
	if err != nil {
		return nil, err
	}

	credential, err := s.revealCredential(account)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("sync state", "account", account.ID, "state", "fetching")
	snapshot, err := s.fetch(ctx, adapter, account, credential)
	if err != nil {
		return nil, err
	}

	previous, err := s.store.MostRecentBefore(ctx, account.ID, account.Platform, nil)
	if err != nil {
		return nil, fmt.Errorf("loading previous metrics: %w", err)
	}

	now := s.clock.Now().UTC()
	record := Score(snapshot, previous)
	record.ClientID = account.ClientID
	record.AccountID = account.ID
	record.Platform = account.Platform
	record.Date = now.Format(DateLayout)
	s.logger.Debug("sync state", "account", account.ID, "state", "scored", "health_score", record.HealthScore)

	// A canceled caller must not leave a record behind.
	if err := ctx.Err(); err != nil {
		return nil, TransportError(account.Platform, err)
	}
	if err := s.store.Append(ctx, &record); err != nil {
		return nil, fmt.Errorf("storing metrics: %w", err)
	}
	s.logger.Debug("sync state", "account", account.ID, "state", "persisted", "record", record.ID)

	// The record is already stored; a failed status update is not a failed sync.
	if err := s.accounts.MarkSynced(ctx, account.ID, now); err != nil {
		s.logger.Warn("marking account synced failed", "account", account.ID, "error", err)
	}

	s.logger.Info("account synced",
		"account", account.ID,
		"platform", string(account.Platform),
		"reach", record.Reach,
		"health_score", record.HealthScore,
		"health_status", string(record.HealthStatus),
	)
	return &record, nil
}

func (s *Service) revealCredential(account *Account) (string, error) {
	if !account.AccessCredential.Valid || strings.TrimSpace(account.AccessCredential.String) == "" {
		return "", ConfigurationError(account.Platform, "account %s has no access credential", account.ID)
	}
	token, err := s.credentials.Reveal(account.AccessCredential.String)
	if err != nil {
		e := ConfigurationError(account.Platform, "cannot read access credential for account %s", account.ID)
		e.Err = err
		return "", e
	}
	return token, nil
}

// fetch calls the adapter, retrying retryable failures up to MaxAttempts.
func (s *Service) fetch(ctx context.Context, adapter Adapter, account *Account, credential string) (*Snapshot, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * s.opts.RetryBackoff
			s.logger.Warn("retrying fetch", "account", account.ID, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, TransportError(account.Platform, ctx.Err())
			case <-time.After(wait):
			}
		}

		snapshot, err := s.fetchOnce(ctx, adapter, account, credential)
		if err == nil {
			return snapshot, nil
		}
		lastErr = err
		if !Retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (s *Service) fetchOnce(ctx context.Context, adapter Adapter, account *Account, credential string) (*Snapshot, error) {
	if s.opts.AccountTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AccountTimeout)
		defer cancel()
	}

	snapshot, err := adapter.Fetch(ctx, account, credential)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, UpstreamError(account.Platform, "adapter returned no data")
	}
	return snapshot, nil
}

func collectResults(results []SyncResult) *BatchSyncResult {
	batch := &BatchSyncResult{
		Results: make([]SyncResult, 0, len(results)),
		Errors:  make([]SyncResult, 0),
	}
	for _, r := range results {
		if r.Success {
			batch.Results = append(batch.Results, r)
			batch.Synced++
		} else {
			batch.Errors = append(batch.Errors, r)
			batch.Failed++
		}
	}
	return batch
}
