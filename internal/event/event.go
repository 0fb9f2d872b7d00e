// Package event defines the discrete progress records a copy operation emits.
package event

import (
	"time"

	"github.com/bamsammich/treecp/internal/stats"
)

// Type identifies the kind of event.
type Type int

const (
	Start Type = iota + 1
	ItemStarted
	ItemCopied
	ItemSkipped
	ItemFailed
	Removed
	End
)

var typeNames = [...]string{
	Start:       "Start",
	ItemStarted: "ItemStarted",
	ItemCopied:  "ItemCopied",
	ItemSkipped: "ItemSkipped",
	ItemFailed:  "ItemFailed",
	Removed:     "Removed",
	End:         "End",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress record from the engine. Events are
// advisory: the engine never waits on a consumer that is not reading.
type Event struct {
	Timestamp time.Time
	Error     error
	// Stats is a snapshot of the running statistics (ItemCopied, End).
	Stats stats.Snapshot
	// Path is the source path of the entry, or the removed destination
	// path for Removed.
	Path string
	// Target is the destination path of the entry.
	Target string
	// OpID identifies the copy operation that emitted the event.
	OpID  string
	Type  Type
	Size  int64
	Total int64 // entries discovered (Start)
	// TotalSize is the byte size of all regular files discovered (Start).
	TotalSize int64
}
