// Package ui renders copy progress and the final summary on the terminal.
package ui

import (
	"io"
	"time"

	"github.com/bamsammich/treecp/internal/event"
	"github.com/bamsammich/treecp/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     stats.ReadTicker
	Theme     Theme
	SrcRoot   string
	// Interval between progress lines on ErrWriter. Zero disables them.
	Interval time.Duration
	Quiet    bool
	Verbose  bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory returns the interface
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	return &plainPresenter{
		w:        cfg.Writer,
		errW:     cfg.ErrWriter,
		stats:    cfg.Stats,
		theme:    cfg.Theme,
		srcRoot:  cfg.SrcRoot,
		interval: cfg.Interval,
		verbose:  cfg.Verbose,
	}
}
