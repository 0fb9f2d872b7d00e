package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"syscall"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

// Kind classifies an engine error.
type Kind int

const (
	KindIO Kind = iota
	KindSelfSubdirectory
	KindVerify
)

var (
	// ErrSelfSubdirectory is reported when the destination lies inside the source.
	ErrSelfSubdirectory = errors.Base("destination is a sub-directory of source")

	// ErrChecksumMismatch is reported when a copied file does not hash to its source.
	ErrChecksumMismatch = errors.Base("checksum mismatch")
)

// Error describes a failed operation on one path.
type Error struct {
	Err  error
	Op   string
	Path string
	Kind Kind
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// newError wraps err for path with a stack trace.
func newError(op, path string, err error) error {
	kind := KindIO
	if errors.Is(err, ErrChecksumMismatch) {
		kind = KindVerify
	}
	return errors.WithStack(&Error{Kind: kind, Op: op, Path: path, Err: err})
}

// Code returns a short machine-readable code for err: "ESELF" when the
// destination is inside the source, otherwise the name of the underlying
// errno ("ENOENT", "EACCES", ...). It returns "" when neither applies.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindSelfSubdirectory {
		return "ESELF"
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return unix.ErrnoName(errno)
	}
	return ""
}

// ErrorSink collects per-entry errors when copying continues past them. A
// non-empty sink is the error of the finished operation.
type ErrorSink interface {
	error
	Record(err error)
	Len() int
}

// ErrorList keeps errors in memory.
type ErrorList struct {
	errs []error
	mu   sync.Mutex
}

var _ ErrorSink = (*ErrorList)(nil)

func (l *ErrorList) Record(err error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

func (l *ErrorList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}

// Errors returns a copy of the recorded errors in arrival order.
func (l *ErrorList) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]error(nil), l.errs...)
}

func (l *ErrorList) Unwrap() []error { return l.Errors() }

func (l *ErrorList) Error() string {
	errs := l.Errors()
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(errs), strings.Join(msgs, "; "))
}

// ErrorWriter streams each error, with its stack trace, to w.
type ErrorWriter struct {
	w        io.Writer
	writeErr error
	n        int
	mu       sync.Mutex
}

var _ ErrorSink = (*ErrorWriter)(nil)

// NewErrorWriter returns a sink writing to w.
func NewErrorWriter(w io.Writer) *ErrorWriter {
	return &ErrorWriter{w: w}
}

func (ew *ErrorWriter) Record(err error) {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	ew.n++
	if ew.writeErr != nil {
		return
	}
	if _, werr := fmt.Fprintf(ew.w, "%+v\n", err); werr != nil {
		ew.writeErr = werr
	}
}

func (ew *ErrorWriter) Len() int {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	return ew.n
}

// WriteErr returns the first error hit writing to the underlying writer.
func (ew *ErrorWriter) WriteErr() error {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	return ew.writeErr
}

func (ew *ErrorWriter) Error() string {
	return fmt.Sprintf("%d errors written to error log", ew.Len())
}
