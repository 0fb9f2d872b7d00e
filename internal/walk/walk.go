// Package walk enumerates the entries of a source tree in the order they
// are copied: pre-order, names sorted, root first.
package walk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/bamsammich/treecp/internal/fsys"
)

// FileType identifies the kind of filesystem entry.
type FileType int

const (
	Regular FileType = iota
	Dir
	Symlink
	Device
	Other // sockets, named pipes
)

var typeNames = [...]string{
	Regular: "file",
	Dir:     "dir",
	Symlink: "symlink",
	Device:  "device",
	Other:   "other",
}

func (t FileType) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// TypeOf classifies a file mode.
func TypeOf(mode os.FileMode) FileType {
	switch {
	case mode.IsRegular():
		return Regular
	case mode.IsDir():
		return Dir
	case mode&os.ModeSymlink != 0:
		return Symlink
	case mode&os.ModeDevice != 0:
		// Covers character devices too; os sets ModeDevice on both.
		return Device
	default:
		return Other
	}
}

// Entry is one enumerated path and its metadata.
type Entry struct {
	Info os.FileInfo
	Path string
	Type FileType
}

// Filter decides whether an entry is enumerated. Returning false for a
// directory also skips everything beneath it.
type Filter func(Entry) bool

// Options controls enumeration.
type Options struct {
	Filter Filter

	// Dereference follows symbolic links. A link whose target is missing
	// is still reported as a link.
	Dereference bool
}

type walker struct {
	fs   fsys.FS
	opts Options
	out  []Entry
}

// Enumerate lists root and everything beneath it. Any stat or readdir
// failure aborts the walk and is returned.
func Enumerate(ctx context.Context, fs fsys.FS, root string, opts Options) ([]Entry, error) {
	w := &walker{fs: fs, opts: opts}
	if err := w.visit(ctx, filepath.Clean(root), nil); err != nil {
		return nil, err
	}
	return w.out, nil
}

func (w *walker) stat(path string) (os.FileInfo, error) {
	if !w.opts.Dereference {
		return w.fs.Lstat(path)
	}
	info, err := w.fs.Stat(path)
	if err != nil && fsys.NotExist(err) {
		// Dangling link: report the link itself.
		return w.fs.Lstat(path)
	}
	return info, err
}

func (w *walker) visit(ctx context.Context, path string, ancestors []fsys.DevIno) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := w.stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	e := Entry{Path: path, Info: info, Type: TypeOf(info.Mode())}
	if w.opts.Filter != nil && !w.opts.Filter(e) {
		return nil
	}

	if e.Type != Dir {
		w.out = append(w.out, e)
		return nil
	}

	id := fsys.Identity(info)
	if id != (fsys.DevIno{}) {
		for _, a := range ancestors {
			if a == id {
				return &os.PathError{Op: "walk", Path: path, Err: syscall.ELOOP}
			}
		}
	}
	w.out = append(w.out, e)

	names, err := w.fs.ReadDir(path)
	if err != nil {
		return fmt.Errorf("readdir %s: %w", path, err)
	}

	ancestors = append(ancestors, id)
	for _, name := range names {
		if err := w.visit(ctx, filepath.Join(path, name), ancestors); err != nil {
			return err
		}
	}
	return nil
}

// TotalSize sums the sizes of the regular files among entries.
func TotalSize(entries []Entry) int64 {
	var n int64
	for _, e := range entries {
		if e.Type == Regular {
			n += e.Info.Size()
		}
	}
	return n
}
