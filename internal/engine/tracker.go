package engine

import (
	"time"

	"github.com/bamsammich/treecp/internal/event"
	"github.com/bamsammich/treecp/internal/walk"
)

// finish completes the operation exactly once. Later calls are ignored.
func (op *Operation) finish(err error) {
	op.once.Do(func() {
		snap := op.stats.Snapshot()
		op.result = Result{ID: op.id, Stats: snap, Err: err}
		emitEvent(op.cfg.Events, event.Event{
			Type:  event.End,
			OpID:  op.id,
			Path:  op.cfg.Src,
			Stats: snap,
			Error: err,
		})
		if err != nil {
			op.log.Debug("copy finished with error", "error", err, "code", Code(err), "stats", snap.String())
		} else {
			op.log.Debug("copy finished", "stats", snap.String(), "elapsed", snap.Elapsed)
		}
		close(op.done)
	})
}

// finished reports whether completion has already fired.
func (op *Operation) finished() bool {
	select {
	case <-op.done:
		return true
	default:
		return false
	}
}

// fail records a per-entry failure. It returns a non-nil error when the
// operation must stop dispatching.
func (op *Operation) fail(e walk.Entry, target string, err error) error {
	op.stats.AddErrors(1)
	op.emit(event.Event{
		Type:   event.ItemFailed,
		Path:   e.Path,
		Target: target,
		Error:  err,
	})
	op.log.Debug("copy failed", "path", e.Path, "type", e.Type, "error", err)

	if op.continues() {
		op.cfg.Errors.Record(err)
		return nil
	}
	op.finish(err)
	return err
}

// continues reports whether failures are recorded rather than fatal. The
// sequential runner only continues when errors are streamed to a writer.
func (op *Operation) continues() bool {
	if !op.cfg.ContinueOnError {
		return false
	}
	if op.sequential {
		_, ok := op.cfg.Errors.(*ErrorWriter)
		return ok
	}
	return true
}

func (op *Operation) skip(e walk.Entry, target, reason string) {
	op.stats.AddSkipped(1)
	op.emit(event.Event{
		Type:   event.ItemSkipped,
		Path:   e.Path,
		Target: target,
	})
	op.log.Debug("skipped", "path", e.Path, "target", target, "reason", reason)
}

func (op *Operation) copied(e walk.Entry, target string, size int64) {
	op.emit(event.Event{
		Type:   event.ItemCopied,
		Path:   e.Path,
		Target: target,
		Size:   size,
		Stats:  op.stats.Snapshot(),
	})
	op.log.Debug("copied", "path", e.Path, "type", e.Type, "size", size)
}

func (op *Operation) sinkErr() error {
	if op.cfg.Errors == nil || op.cfg.Errors.Len() == 0 {
		return nil
	}
	return op.cfg.Errors
}

// emit sends an entry event unless the operation has already completed.
func (op *Operation) emit(e event.Event) {
	if op.finished() {
		return
	}
	e.OpID = op.id
	emitEvent(op.cfg.Events, e)
}

// emitEvent sends e without blocking. Events are dropped when ch is full.
func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
