package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/treecp/internal/walk"
)

// Progress is a point-in-time read of the scheduler counters. Running never
// exceeds the configured limit; the copy is complete when every started
// entry has finished and none is running.
type Progress struct {
	Started     int64
	Running     int64
	Finished    int64
	PeakRunning int64
}

// Complete reports whether every started entry has finished.
func (p Progress) Complete() bool {
	return p.Started == p.Finished && p.Running == 0
}

type progress struct {
	started  atomic.Int64
	running  atomic.Int64
	finished atomic.Int64
	peak     atomic.Int64
}

func (p *progress) enter() {
	n := p.running.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (p *progress) leave() {
	p.running.Add(-1)
	p.finished.Add(1)
}

func (p *progress) snapshot() Progress {
	return Progress{
		Started:     p.started.Load(),
		Running:     p.running.Load(),
		Finished:    p.finished.Load(),
		PeakRunning: p.peak.Load(),
	}
}

// schedule copies entries in enumeration order with at most Limit in
// flight. It returns once every admitted copy has finished. Dispatch stops
// early when ctx is cancelled or a failure ends the operation.
func (op *Operation) schedule(ctx context.Context, entries []walk.Entry) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(op.cfg.Limit)

	for _, e := range entries {
		if gctx.Err() != nil || op.finished() {
			break
		}
		op.prog.started.Add(1)
		// Go blocks until a slot is free.
		g.Go(func() error {
			op.prog.enter()
			defer op.prog.leave()
			return op.copyEntry(gctx, e)
		})
	}

	// Failures are reported through fail.
	_ = g.Wait()
}
