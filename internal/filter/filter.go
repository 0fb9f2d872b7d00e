// Package filter builds the entry predicates that narrow a copy: ordered
// rsync-style include/exclude rules, size bounds and regular expressions.
package filter

import (
	"path/filepath"

	"github.com/bamsammich/treecp/internal/walk"
)

// Rule represents a single include or exclude filter rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool // true=include, false=exclude
}

// Chain holds an ordered list of filter rules plus size filters.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: false})
	return nil
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: true})
	return nil
}

// SetMinSize sets the minimum file size filter.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size filter.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Empty reports whether the chain has no rules and no size filters.
func (c *Chain) Empty() bool {
	return len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0
}

// Match returns true if the path should be INCLUDED (not filtered out).
// relPath is relative to the copy root, isDir indicates directories,
// and size is the file size (ignored for directories).
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if !isDir && !c.sizeOK(size) {
		return false
	}
	return c.matchRules(relPath, isDir)
}

// sizeOK reports whether size is within the min/max bounds.
func (c *Chain) sizeOK(size int64) bool {
	if c.minSize > 0 && size < c.minSize {
		return false
	}
	if c.maxSize > 0 && size > c.maxSize {
		return false
	}
	return true
}

// matchRules walks the rules in order; the first match wins and no match
// includes.
func (c *Chain) matchRules(relPath string, isDir bool) bool {
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}
	return true
}

// Predicate adapts the chain to a walk.Filter for a copy rooted at root.
// The root entry itself is always included. Size bounds apply to regular
// files only.
func (c *Chain) Predicate(root string) walk.Filter {
	root = filepath.Clean(root)
	return func(e walk.Entry) bool {
		rel, err := filepath.Rel(root, e.Path)
		if err != nil || rel == "." {
			return true
		}
		if e.Type == walk.Regular && !c.sizeOK(e.Info.Size()) {
			return false
		}
		return c.matchRules(filepath.ToSlash(rel), e.Type == walk.Dir)
	}
}
