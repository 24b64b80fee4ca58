package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"pulse-go/internal/pulse"
)

const shutdownTimeout = 15 * time.Second

// Serve listens on the configured address and runs the HTTP API until ctx is
// canceled. When sync.schedule is set, batch syncs of every active account
// also run on that cron schedule.
func (a *PulseApp) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Server.ListenAddr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener. It takes ownership of ln.
func (a *PulseApp) ServeListener(ctx context.Context, ln net.Listener) error {
	if err := a.persistOperation(ctx, ln.Addr().String()); err != nil {
		ln.Close()
		return err
	}

	sched, err := a.newScheduler(ctx)
	if err != nil {
		ln.Close()
		return a.op.Fail(err)
	}

	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if sched != nil {
			// Stop waits for a running batch to finish.
			select {
			case <-sched.Stop().Done():
			case <-shutdownCtx.Done():
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if sched != nil {
		sched.Start()
	}
	return a.op.Fail(g.Wait())
}

// newScheduler returns nil when no schedule is configured.
func (a *PulseApp) newScheduler(ctx context.Context) (*cron.Cron, error) {
	schedule := a.cfg.Sync.Schedule
	if schedule == "" {
		return nil, nil
	}

	logger := cronLogger{l: a.logger}
	sched := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := sched.AddFunc(schedule, func() { a.runScheduledSync(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	a.logger.Info("scheduled batch sync", "schedule", schedule)
	return sched, nil
}

// runScheduledSync syncs every active account and records the run as its own operation.
func (a *PulseApp) runScheduledSync(ctx context.Context) {
	op, err := a.db.CreateOperation(ctx, "ScheduledSync", a.cfg.Sync.Schedule)
	if err != nil {
		a.logger.Error("recording scheduled sync", "error", err)
		return
	}

	status := StatusSuccess
	result, err := a.service.SyncMany(ctx, pulse.SyncFilter{})
	if err != nil {
		status = StatusError
		a.logger.Error("scheduled sync failed", "operation_id", op.ID, "error", err)
	} else {
		a.logger.Info("scheduled sync finished", "operation_id", op.ID, "synced", result.Synced, "failed", result.Failed)
	}

	// The batch context may be canceled by shutdown; the record still needs closing.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := a.db.FinishOperation(finishCtx, op.ID, status); err != nil {
		a.logger.Error("finishing scheduled sync", "operation_id", op.ID, "error", err)
	}
}

// cronLogger adapts pulse.Logger to cron.Logger.
type cronLogger struct {
	l pulse.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
