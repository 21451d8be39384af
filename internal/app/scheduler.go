package app

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

// DigestSender is the job the scheduler fires.
type DigestSender interface {
	Enabled() bool
	Send(ctx context.Context) (int, error)
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// newDigestScheduler registers the digest job on a standard five-field
// cron spec evaluated in loc. Overlapping runs are skipped.
func newDigestScheduler(ctx context.Context, spec string, loc *time.Location, digest DigestSender, timeout time.Duration, logger *logging.Logger) (*cron.Cron, error) {
	if loc == nil {
		loc = time.Local
	}
	adapter := cronLogger{logger: logger}
	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	_, err := scheduler.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		sent, err := digest.Send(runCtx)
		if err != nil {
			logger.ErrorContext(runCtx, "daily digest failed", "sent", sent, "error", err)
			return
		}
		logger.InfoContext(runCtx, "daily digest sent", "sent", sent)
	})
	if err != nil {
		return nil, fmt.Errorf("register digest job %q: %w", spec, err)
	}
	return scheduler, nil
}

// runDigestScheduler blocks until ctx is done, then waits for a running
// job to finish.
func runDigestScheduler(ctx context.Context, spec string, loc *time.Location, digest DigestSender, logger *logging.Logger) error {
	if digest == nil || !digest.Enabled() {
		logger.Info("daily digest disabled", "reason", "twilio or DIGEST_RECIPIENTS not configured")
		return nil
	}

	// The fixture fetch alone can take a couple of minutes on the
	// per-competition path.
	scheduler, err := newDigestScheduler(ctx, spec, loc, digest, 5*time.Minute, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	logger.Info("daily digest scheduled", "cron", spec)

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}
