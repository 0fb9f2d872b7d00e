package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector accumulates copy statistics using lock-free atomic counters.
// Every entry of an operation ends in exactly one of the copied, skipped or
// error buckets; overwritten is tracked alongside copied.
type Collector struct {
	filesCopied atomic.Int64
	dirsCopied  atomic.Int64
	linksCopied atomic.Int64
	bytesCopied atomic.Int64
	overwritten atomic.Int64
	skipped     atomic.Int64
	errors      atomic.Int64
	bytesTotal  atomic.Int64
	itemsTotal  atomic.Int64
	startTime   time.Time

	// Ring buffer, written only by presenter's Tick(), not workers.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per second
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// Reader is the read side of a Collector.
type Reader interface {
	Snapshot() Snapshot
}

// ReadTicker is a Reader that also samples throughput for presenters.
type ReadTicker interface {
	Reader
	Tick()
	RollingSpeed(seconds int) float64
	ETA() time.Duration
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records enumeration totals: the number of entries and the byte
// size of all regular files among them.
func (c *Collector) SetTotals(items, bytes int64) {
	c.itemsTotal.Store(items)
	c.bytesTotal.Store(bytes)
}

func (c *Collector) AddFilesCopied(n int64) { c.filesCopied.Add(n) }
func (c *Collector) AddDirsCopied(n int64)  { c.dirsCopied.Add(n) }
func (c *Collector) AddLinksCopied(n int64) { c.linksCopied.Add(n) }
func (c *Collector) AddBytesCopied(n int64) { c.bytesCopied.Add(n) }
func (c *Collector) AddOverwritten(n int64) { c.overwritten.Add(n) }
func (c *Collector) AddSkipped(n int64)     { c.skipped.Add(n) }
func (c *Collector) AddErrors(n int64)      { c.errors.Add(n) }

// Copied groups the counters of successfully copied entries.
type Copied struct {
	Files       int64 `json:"files"`
	Directories int64 `json:"directories"`
	Links       int64 `json:"links"`
	Size        int64 `json:"size"`
}

// Snapshot is a point-in-time read of all counters. Its JSON form is
// {copied:{files,directories,links,size}, overwrited, skipped, size, errors, items}.
type Snapshot struct {
	Copied      Copied        `json:"copied"`
	Overwritten int64         `json:"overwrited"`
	Skipped     int64         `json:"skipped"`
	Size        int64         `json:"size"`
	Errors      int64         `json:"errors"`
	Items       int64         `json:"items"`
	Elapsed     time.Duration `json:"-"`
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Copied: Copied{
			Files:       c.filesCopied.Load(),
			Directories: c.dirsCopied.Load(),
			Links:       c.linksCopied.Load(),
			Size:        c.bytesCopied.Load(),
		},
		Overwritten: c.overwritten.Load(),
		Skipped:     c.skipped.Load(),
		Size:        c.bytesTotal.Load(),
		Errors:      c.errors.Load(),
		Items:       c.itemsTotal.Load(),
		Elapsed:     c.Elapsed(),
	}
}

// Settled returns the number of entries that reached a terminal outcome.
func (s Snapshot) Settled() int64 {
	return s.Copied.Files + s.Copied.Directories + s.Copied.Links + s.Errors + s.Skipped
}

// Tick snapshots the byte delta into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	current := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	if c.startTime.IsZero() {
		return 0
	}
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"files=%d dirs=%d links=%d bytes=%d overwritten=%d skipped=%d errors=%d items=%d",
		s.Copied.Files, s.Copied.Directories, s.Copied.Links, s.Copied.Size,
		s.Overwritten, s.Skipped, s.Errors, s.Items,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
