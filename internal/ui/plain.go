package ui

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bamsammich/treecp/internal/engine"
	"github.com/bamsammich/treecp/internal/event"
	"github.com/bamsammich/treecp/internal/stats"
)

// plainPresenter writes one line per settled entry to w and periodic
// progress to errW.
type plainPresenter struct {
	w        io.Writer
	errW     io.Writer
	stats    stats.ReadTicker
	theme    Theme
	srcRoot  string
	interval time.Duration
	verbose  bool
}

func (p *plainPresenter) Run(events <-chan event.Event) error {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	var progress <-chan time.Time
	if p.interval > 0 {
		pt := time.NewTicker(p.interval)
		defer pt.Stop()
		progress = pt.C
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-tick.C:
			p.stats.Tick()
		case <-progress:
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	path := StripRoot(p.srcRoot, ev.Path)
	switch ev.Type {
	case event.ItemCopied:
		if !p.verbose {
			return
		}
		fmt.Fprintf(p.w, "%s  %s\n", path, FormatBytes(ev.Size))
	case event.ItemFailed:
		msg := "error"
		if ev.Error != nil {
			msg = ev.Error.Error()
		}
		if errors.Is(ev.Error, engine.ErrChecksumMismatch) {
			fmt.Fprintf(p.w, "%s\n", p.theme.Failure("MISMATCH: "+path))
			return
		}
		fmt.Fprintf(p.w, "%s  %s\n", path, p.theme.Failure(msg))
	case event.ItemSkipped:
		if p.verbose {
			fmt.Fprintf(p.w, "%s  skipped\n", path)
		}
	case event.Removed:
		if p.verbose {
			fmt.Fprintf(p.w, "replace: %s\n", ev.Path)
		}
	case event.Start, event.ItemStarted, event.End:
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	speed := p.stats.RollingSpeed(10)
	if snap.Size > 0 {
		pct := float64(snap.Copied.Size) / float64(snap.Size) * 100
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s items %s eta %s\n",
			pct,
			FormatBytes(snap.Copied.Size), FormatBytes(snap.Size),
			FormatCount(snap.Settled()), FormatCount(snap.Items),
			FormatRate(speed),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.errW, "progress: %s/%s items %s\n",
		FormatCount(snap.Settled()), FormatCount(snap.Items),
		FormatRate(speed),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), p.theme)
}

// StripRoot removes a root prefix from a path, returning a clean relative path.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	if path == root {
		return filepath.Base(path)
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if strings.HasPrefix(path, root) {
		return path[len(root):]
	}
	return path
}
