package scheduler

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"scan-service/core"
)

// ScanScheduler runs scan passes in a long-lived background goroutine,
// sleeping a base interval plus random jitter between passes. The jitter
// keeps the polling cadence from being a fixed, detectable pattern against
// upstream rate-limiters.
type ScanScheduler struct {
	log      *slog.Logger
	scanner  core.Scanner
	interval time.Duration
	jitter   time.Duration
	done     chan struct{}
}

func NewScanScheduler(log *slog.Logger, scanner core.Scanner, interval, jitter time.Duration) *ScanScheduler {
	return &ScanScheduler{
		log:      log,
		scanner:  scanner,
		interval: interval,
		jitter:   jitter,
		done:     make(chan struct{}),
	}
}

// Start launches the scan loop. Pass failures are logged and never stop the
// loop; the loop exits when ctx is cancelled.
func (s *ScanScheduler) Start(ctx context.Context) {
	s.log.Info("start scan scheduler", "interval", s.interval, "jitter", s.jitter)
	go func() {
		defer close(s.done)
		for {
			if _, err := s.scanner.Scan(ctx); err != nil {
				s.log.Error("scan pass failed", "error", err)
			}

			sleep := s.interval + s.nextJitter()
			s.log.Debug("next scan scheduled", "sleep", sleep)

			timer := time.NewTimer(sleep)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				s.log.Info("scan scheduler stopped")
				return
			}
		}
	}()
}

// Done is closed once the loop goroutine has exited, so shutdown can join it
// with a bounded grace period.
func (s *ScanScheduler) Done() <-chan struct{} {
	return s.done
}

func (s *ScanScheduler) nextJitter() time.Duration {
	if s.jitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(s.jitter)))
}
