// Package fsys defines the filesystem capability set the copy engine runs
// against, with an implementation for the host OS and an adapter for any
// afero.Fs (used for in-memory trees).
package fsys

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"
	"time"
)

// FS is the set of filesystem primitives the engine needs. All paths are
// absolute.
type FS interface {
	// Stat follows symbolic links.
	Stat(name string) (os.FileInfo, error)

	// Lstat does not follow a final symbolic link.
	Lstat(name string) (os.FileInfo, error)

	// ReadDir returns the sorted names of the entries in a directory.
	ReadDir(name string) ([]string, error)

	// Open opens a file (or device) for reading.
	Open(name string) (io.ReadCloser, error)

	// Create opens name for writing, creating it with perm or truncating it.
	Create(name string, perm os.FileMode) (io.WriteCloser, error)

	// MkdirAll creates a directory and all missing parents.
	MkdirAll(name string, perm os.FileMode) error

	Chmod(name string, mode os.FileMode) error

	// Chtimes sets access and modification times on name.
	Chtimes(name string, atime, mtime time.Time) error

	// Symlink creates newname as a symbolic link to oldname.
	Symlink(oldname, newname string) error

	// Readlink returns the destination of a symbolic link. It fails with
	// EINVAL when name is not a symbolic link.
	Readlink(name string) (string, error)

	// Remove deletes a single file, link or empty directory.
	Remove(name string) error
}

// NotExist reports whether err means the path does not exist.
func NotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// NotSymlink reports whether err is the EINVAL readlink returns for a path
// that is not a symbolic link.
func NotSymlink(err error) bool {
	return errors.Is(err, syscall.EINVAL)
}

// AccessTime returns the access time recorded in info, falling back to the
// modification time when the platform stat is unavailable.
func AccessTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return atimeFromStat(stat)
	}
	return info.ModTime()
}

// DevIno identifies an inode. Zero when the platform stat is unavailable.
type DevIno struct {
	Dev uint64
	Ino uint64
}

// Identity returns the device/inode pair recorded in info.
func Identity(info os.FileInfo) DevIno {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return DevIno{Dev: devFromStat(stat), Ino: stat.Ino}
	}
	return DevIno{}
}
