package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/bamsammich/treecp/internal/stats"
)

// Theme colors the outcome markers of the summary and failure lines.
type Theme struct {
	success *color.Color
	failure *color.Color
}

var colorNames = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// DefaultTheme is green for success and red for failure.
func DefaultTheme() Theme {
	return Theme{
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed, color.Bold),
	}
}

// NewTheme builds a theme from color names. Empty names keep the default.
func NewTheme(success, failure string) (Theme, error) {
	t := DefaultTheme()
	if success != "" {
		attr, ok := colorNames[strings.ToLower(success)]
		if !ok {
			return Theme{}, fmt.Errorf("unknown color %q", success)
		}
		t.success = color.New(attr)
	}
	if failure != "" {
		attr, ok := colorNames[strings.ToLower(failure)]
		if !ok {
			return Theme{}, fmt.Errorf("unknown color %q", failure)
		}
		t.failure = color.New(attr, color.Bold)
	}
	return t, nil
}

// SetEnabled forces colored output on or off regardless of the terminal.
func (t Theme) SetEnabled(on bool) {
	for _, c := range []*color.Color{t.success, t.failure} {
		if c == nil {
			continue
		}
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Success paints s in the success color.
func (t Theme) Success(s string) string {
	if t.success == nil {
		return s
	}
	return t.success.Sprint(s)
}

// Failure paints s in the failure color.
func (t Theme) Failure(s string) string {
	if t.failure == nil {
		return s
	}
	return t.failure.Sprint(s)
}

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  dirs 312  links 4  size 2.1 GB  avg 641 MB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot, theme Theme) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.Copied.Size) / snap.Elapsed.Seconds()
	}

	icon := theme.Success("✓")
	if snap.Errors > 0 {
		icon = theme.Failure("✗")
	}

	base := fmt.Sprintf("done %s  files %s  dirs %s  links %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.Copied.Files),
		FormatCount(snap.Copied.Directories),
		FormatCount(snap.Copied.Links),
		FormatBytes(snap.Copied.Size),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)

	if snap.Skipped > 0 {
		base += "  skipped " + FormatCount(snap.Skipped)
	}
	if snap.Overwritten > 0 {
		base += "  overwritten " + FormatCount(snap.Overwritten)
	}

	return base + fmt.Sprintf("  errors %d", snap.Errors)
}
