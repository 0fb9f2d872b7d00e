package fsys

import (
	"io"
	"os"
	"sort"
	"time"
)

// Compile-time interface check.
var _ FS = OS{}

// OS is the host filesystem.
type OS struct{}

func (OS) Stat(name string) (os.FileInfo, error)  { return os.Stat(name) }
func (OS) Lstat(name string) (os.FileInfo, error) { return os.Lstat(name) }

func (OS) ReadDir(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

//nolint:ireturn // implements FS
func (OS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

//nolint:ireturn // implements FS
func (OS) Create(name string, perm os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

func (OS) MkdirAll(name string, perm os.FileMode) error { return os.MkdirAll(name, perm) }
func (OS) Chmod(name string, mode os.FileMode) error    { return os.Chmod(name, mode) }

func (OS) Chtimes(name string, atime, mtime time.Time) error {
	return setTimes(name, atime, mtime)
}

func (OS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }
func (OS) Readlink(name string) (string, error)  { return os.Readlink(name) }
func (OS) Remove(name string) error              { return os.Remove(name) }
