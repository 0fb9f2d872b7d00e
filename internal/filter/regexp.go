package filter

import (
	"fmt"
	"regexp"

	"github.com/bamsammich/treecp/internal/walk"
)

// Regexp includes the entries whose full source path matches an expression.
// Unlike Chain it also applies to the root, so a file root that does not
// match copies nothing.
type Regexp struct {
	re *regexp.Regexp
}

// CompileRegexp compiles expr. A leading (?i) makes it case-insensitive.
func CompileRegexp(expr string) (*Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile filter regex: %w", err)
	}
	return &Regexp{re: re}, nil
}

func (r *Regexp) String() string { return r.re.String() }

// Predicate returns the walk.Filter form of r.
func (r *Regexp) Predicate() walk.Filter {
	return func(e walk.Entry) bool {
		return r.re.MatchString(e.Path)
	}
}
