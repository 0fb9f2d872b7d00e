package fsys

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

// Compile-time interface check.
var _ FS = (*Afero)(nil)

// Afero adapts an afero.Fs to FS. Symbolic links are supported only when the
// wrapped filesystem implements afero.Symlinker (OsFs, BasePathFs); on others
// Lstat degrades to Stat and Symlink fails.
type Afero struct {
	fs afero.Fs
}

// NewAfero wraps fs.
func NewAfero(fs afero.Fs) *Afero {
	return &Afero{fs: fs}
}

// NewMemory returns an empty in-memory filesystem.
func NewMemory() *Afero {
	return NewAfero(afero.NewMemMapFs())
}

// Unwrap returns the wrapped afero.Fs.
func (a *Afero) Unwrap() afero.Fs { return a.fs }

func (a *Afero) Stat(name string) (os.FileInfo, error) { return a.fs.Stat(name) }

func (a *Afero) Lstat(name string) (os.FileInfo, error) {
	if l, ok := a.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}

func (a *Afero) ReadDir(name string) ([]string, error) {
	infos, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

//nolint:ireturn // implements FS
func (a *Afero) Open(name string) (io.ReadCloser, error) {
	return a.fs.Open(name)
}

//nolint:ireturn // implements FS
func (a *Afero) Create(name string, perm os.FileMode) (io.WriteCloser, error) {
	return a.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

func (a *Afero) MkdirAll(name string, perm os.FileMode) error { return a.fs.MkdirAll(name, perm) }
func (a *Afero) Chmod(name string, mode os.FileMode) error    { return a.fs.Chmod(name, mode) }

func (a *Afero) Chtimes(name string, atime, mtime time.Time) error {
	return a.fs.Chtimes(name, atime, mtime)
}

func (a *Afero) Symlink(oldname, newname string) error {
	if l, ok := a.fs.(afero.Linker); ok {
		return l.SymlinkIfPossible(oldname, newname)
	}
	return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: afero.ErrNoSymlink}
}

func (a *Afero) Readlink(name string) (string, error) {
	if r, ok := a.fs.(afero.LinkReader); ok {
		return r.ReadlinkIfPossible(name)
	}
	// Without link support nothing is a link; report it the way readlink(2) does.
	if _, err := a.fs.Stat(name); err != nil {
		return "", err
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
}

func (a *Afero) Remove(name string) error { return a.fs.Remove(name) }
