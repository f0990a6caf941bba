package booking

import (
	"context"
	"log/slog"
	"time"
)

type Sweeper interface {
	// Run sweeps no-shows every interval until ctx is cancelled.
	Run(ctx context.Context, every time.Duration)
}

type sweeper struct {
	svc Service
	log *slog.Logger
}

func NewSweeper(svc Service, log *slog.Logger) Sweeper { return &sweeper{svc: svc, log: log} }

func (w *sweeper) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := w.svc.SweepNoShows(ctx); err != nil {
				w.log.Error("no-show sweep failed", "err", err)
			}
		}
	}
}
