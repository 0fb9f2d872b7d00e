package filter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// compiledPattern is a validated rsync-style glob pattern.
type compiledPattern struct {
	glob     string
	original string
	anchored bool // pattern starts with / or contains /
	dirOnly  bool // pattern ends with /
}

// compilePattern validates an rsync-style glob pattern. Unanchored patterns
// match the basename or any trailing path suffix.
func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	// Trailing / means directory-only.
	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if strings.HasPrefix(pattern, "/") {
		cp.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		// Contains a / but doesn't start with /, still anchored per rsync rules.
		cp.anchored = true
	}

	if pattern == "" {
		return nil, fmt.Errorf("empty pattern %q", cp.original)
	}

	// rsync negates classes with [!...]; doublestar accepts both ! and ^.
	if cp.anchored {
		cp.glob = pattern
	} else {
		cp.glob = "**/" + pattern
	}

	if !doublestar.ValidatePattern(cp.glob) {
		return nil, fmt.Errorf("invalid pattern %q: %w", cp.original, doublestar.ErrBadPattern)
	}
	return cp, nil
}

// match tests whether a slash-separated relative path matches this pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	ok, err := doublestar.Match(cp.glob, relPath)
	return err == nil && ok
}
