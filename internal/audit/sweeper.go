package audit

import (
	"context"
	"log/slog"
	"time"
)

// Purger is implemented by stores without native expiry.
type Purger interface {
	Purge(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically purges expired records until its context ends.
type Sweeper struct {
	Purger   Purger
	Interval time.Duration
	Log      *slog.Logger
	Now      func() time.Time
}

// Run blocks until ctx is done. Purge failures are logged and retried on the
// next tick. The Sweeper's fields are only read, so SweepOnce may run alongside.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.Purger == nil {
		return ErrNilStore
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single purge pass.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	n, err := s.Purger.Purge(ctx, now())
	if err != nil {
		log.Warn("audit purge failed", "err", err)
		return
	}
	if n > 0 {
		log.Debug("audit purge", "removed", n)
	}
}
