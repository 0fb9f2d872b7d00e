// Package engine copies a source tree onto a destination path with bounded
// concurrency, conflict resolution and exactly-once completion.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/bamsammich/treecp/internal/event"
	"github.com/bamsammich/treecp/internal/fsys"
	"github.com/bamsammich/treecp/internal/stats"
	"github.com/bamsammich/treecp/internal/walk"
)

// DefaultLimit is the number of entries copied concurrently when Config.Limit
// is unset.
const DefaultLimit = 512

// Config describes a copy operation.
type Config struct {
	// FS is the filesystem both trees live on. Defaults to the host OS.
	FS fsys.FS

	// Filter narrows the enumerated entries. Nil copies everything.
	Filter walk.Filter

	// Errors collects per-entry errors when ContinueOnError is set. Defaults
	// to an ErrorList.
	Errors ErrorSink

	// Stats receives the running counters. Defaults to a fresh collector;
	// callers pass their own to read rates while the copy runs.
	Stats *stats.Collector

	Events chan<- event.Event
	Logger *slog.Logger

	Src string
	Dst string

	HashAlgo HashAlgo

	// Limit caps the number of entries being copied at once.
	Limit int

	// BWLimit caps aggregate throughput in bytes per second. Zero is unlimited.
	BWLimit int64

	// Overwrite replaces existing destination files and links.
	Overwrite bool

	// PreserveTimestamps copies atime and mtime at millisecond resolution.
	PreserveTimestamps bool

	// ContinueOnError records per-entry failures in Errors and keeps going.
	// By default the first failure ends the operation.
	ContinueOnError bool

	// Dereference copies what symbolic links point to instead of the links.
	Dereference bool

	// Verify re-reads every copied regular file and compares checksums.
	Verify bool
}

// Result is the outcome of a copy operation.
type Result struct {
	Err   error
	ID    string
	Stats stats.Snapshot
}

// Operation is a running copy started by Start.
type Operation struct {
	cfg        Config
	fs         fsys.FS
	log        *slog.Logger
	stats      *stats.Collector
	limiter    *rate.Limiter
	done       chan struct{}
	id         string
	result     Result
	dirs       singleflight.Group
	wg         sync.WaitGroup
	once       sync.Once
	prog       progress
	stampOnce  sync.Once
	stampTime  func(time.Time) time.Time
	dirRoot    bool
	sequential bool
}

// Start validates cfg and begins copying in the background. The returned
// Operation reports completion through Done.
func Start(ctx context.Context, cfg Config) *Operation {
	op := newOperation(cfg)
	op.wg.Add(1)
	go func() {
		defer op.wg.Done()
		op.run(ctx)
	}()
	return op
}

// Run executes a copy operation, blocking until it completes and every
// background goroutine has exited.
func Run(ctx context.Context, cfg Config) Result {
	op := Start(ctx, cfg)
	<-op.Done()
	op.Wait()
	return op.Result()
}

// Done is closed when the operation completes. With stop-on-error that is
// the moment the first failure is recorded; copies already in flight may
// still be running.
func (op *Operation) Done() <-chan struct{} { return op.done }

// Wait blocks until every goroutine of the operation has exited.
func (op *Operation) Wait() { op.wg.Wait() }

// Result returns the final result. It is only meaningful after Done closes.
func (op *Operation) Result() Result {
	<-op.done
	return op.result
}

// ID identifies the operation in logs and events.
func (op *Operation) ID() string { return op.id }

// Progress returns the scheduler counters.
func (op *Operation) Progress() Progress { return op.prog.snapshot() }

// Stats returns the live statistics.
func (op *Operation) Stats() stats.Snapshot { return op.stats.Snapshot() }

func newOperation(cfg Config) *Operation {
	if cfg.FS == nil {
		cfg.FS = fsys.OS{}
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HashAlgo == "" {
		cfg.HashAlgo = BLAKE3
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.ContinueOnError && cfg.Errors == nil {
		cfg.Errors = &ErrorList{}
	}

	id := uuid.New().String()
	op := &Operation{
		cfg:   cfg,
		fs:    cfg.FS,
		id:    id,
		log:   cfg.Logger.With("op", id[:8]),
		stats: cfg.Stats,
		done:  make(chan struct{}),

		stampTime: fsys.TruncateMillis,
	}
	if cfg.BWLimit > 0 {
		op.limiter = NewBWLimiter(cfg.BWLimit)
	}
	return op
}

// prepare resolves paths, runs the path guard and enumerates the source.
// A nil slice with a nil error means there is nothing to copy.
func (op *Operation) prepare(ctx context.Context) ([]walk.Entry, error) {
	src, err := absPath(op.cfg.Src)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}
	dst, err := absPath(op.cfg.Dst)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	op.cfg.Src, op.cfg.Dst = src, dst

	same, err := checkPaths(src, dst)
	if err != nil {
		return nil, err
	}
	if same {
		op.log.Debug("source and destination are the same path", "path", src)
		return nil, nil
	}

	var rootInfo os.FileInfo
	if op.cfg.Dereference {
		rootInfo, err = op.fs.Stat(src)
	} else {
		rootInfo, err = op.fs.Lstat(src)
	}
	if err != nil {
		op.stats.AddErrors(1)
		return nil, newError("stat", src, err)
	}
	op.dirRoot = rootInfo.IsDir()

	if err := op.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		op.stats.AddErrors(1)
		return nil, newError("mkdir", filepath.Dir(dst), err)
	}

	entries, err := walk.Enumerate(ctx, op.fs, src, walk.Options{
		Filter:      op.cfg.Filter,
		Dereference: op.cfg.Dereference,
	})
	if err != nil {
		op.stats.AddErrors(1)
		return nil, newError("walk", src, err)
	}

	op.stats.SetTotals(int64(len(entries)), walk.TotalSize(entries))
	emitEvent(op.cfg.Events, event.Event{
		Type:      event.Start,
		OpID:      op.id,
		Path:      src,
		Target:    dst,
		Total:     int64(len(entries)),
		TotalSize: walk.TotalSize(entries),
	})
	op.log.Debug("enumerated source",
		"src", src, "dst", dst, "entries", len(entries), "limit", op.cfg.Limit)
	return entries, nil
}

func (op *Operation) run(ctx context.Context) {
	entries, err := op.prepare(ctx)
	if err != nil || len(entries) == 0 {
		op.finish(err)
		return
	}

	op.schedule(ctx, entries)

	if err := ctx.Err(); err != nil {
		op.finish(fmt.Errorf("copy interrupted: %w", err))
		return
	}
	op.finish(op.sinkErr())
}

// stampFunc returns the truncation applied to preserved timestamps. When
// copying a directory the destination root is checked once, on first use.
func (op *Operation) stampFunc() func(time.Time) time.Time {
	op.stampOnce.Do(func() {
		if op.dirRoot {
			op.checkTimeResolution(op.cfg.Dst)
		}
	})
	return op.stampTime
}

// checkTimeResolution falls back to whole seconds when the destination
// filesystem drops the millisecond part of timestamps.
func (op *Operation) checkTimeResolution(dir string) {
	millis, err := fsys.HasMillisResolution(op.fs, dir)
	if err != nil {
		op.log.Debug("timestamp resolution check failed", "dir", dir, "error", err)
		return
	}
	if !millis {
		op.log.Debug("destination keeps whole-second timestamps", "dir", dir)
		op.stampTime = fsys.TruncateSeconds
	}
}

// target maps a source path onto the destination tree.
func (op *Operation) target(path string) string {
	rel, err := filepath.Rel(op.cfg.Src, path)
	if err != nil || rel == "." {
		return op.cfg.Dst
	}
	return filepath.Join(op.cfg.Dst, rel)
}
