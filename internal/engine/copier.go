package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bamsammich/treecp/internal/event"
	"github.com/bamsammich/treecp/internal/fsys"
	"github.com/bamsammich/treecp/internal/platform"
	"github.com/bamsammich/treecp/internal/walk"
)

// copyEntry copies one entry onto its destination. Every outcome is
// accounted for in the statistics; the returned error is non-nil only when
// the failure ends the operation.
func (op *Operation) copyEntry(ctx context.Context, e walk.Entry) error {
	target := op.target(e.Path)
	op.emit(event.Event{Type: event.ItemStarted, Path: e.Path, Target: target})

	var err error
	switch e.Type {
	case walk.Dir:
		err = op.copyDir(e, target)
	case walk.Regular, walk.Device:
		err = op.copyFile(ctx, e, target)
	case walk.Symlink:
		err = op.copyLink(e, target)
	default:
		op.skip(e, target, "unsupported file type")
		return nil
	}
	if err != nil {
		return op.fail(e, target, err)
	}
	return nil
}

// fileMode is the part of a mode chmod applies.
func fileMode(info os.FileInfo) os.FileMode {
	return info.Mode() & (os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky)
}

func (op *Operation) copyDir(e walk.Entry, target string) error {
	mode := fileMode(e.Info)
	if err := op.fs.MkdirAll(target, mode.Perm()); err != nil {
		return newError("mkdir", target, err)
	}
	// MkdirAll is a no-op when a child copy created the directory first.
	if err := op.fs.Chmod(target, mode); err != nil {
		return newError("chmod", target, err)
	}
	op.stats.AddDirsCopied(1)
	op.copied(e, target, 0)
	return nil
}

// ensureParent creates the directory a file or link is written into.
// Concurrent requests for the same directory share one MkdirAll.
func (op *Operation) ensureParent(target string) error {
	dir := filepath.Dir(target)
	_, err, _ := op.dirs.Do(dir, func() (any, error) {
		return nil, op.fs.MkdirAll(dir, 0o755)
	})
	if err != nil {
		return newError("mkdir", dir, err)
	}
	return nil
}

// claim decides whether target may be written. An existing target is
// removed when overwriting is enabled; otherwise the entry is skipped.
func (op *Operation) claim(e walk.Entry, target string) (bool, error) {
	_, err := op.fs.Lstat(target)
	if fsys.NotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, newError("stat", target, err)
	}
	if !op.cfg.Overwrite || target == e.Path {
		op.skip(e, target, "destination exists")
		return false, nil
	}
	return true, op.remove(target)
}

func (op *Operation) remove(target string) error {
	if err := op.fs.Remove(target); err != nil {
		return newError("remove", target, err)
	}
	op.stats.AddOverwritten(1)
	op.emit(event.Event{Type: event.Removed, Path: target, Target: target})
	op.log.Debug("removed", "path", target)
	return nil
}

func (op *Operation) copyFile(ctx context.Context, e walk.Entry, target string) error {
	ok, err := op.claim(e, target)
	if err != nil || !ok {
		return err
	}
	if err := op.ensureParent(target); err != nil {
		return err
	}

	n, err := op.transfer(ctx, e, target)
	if err != nil {
		return err
	}

	if err := op.fs.Chmod(target, fileMode(e.Info)); err != nil {
		return newError("chmod", target, err)
	}

	if op.cfg.PreserveTimestamps {
		stamp := op.stampFunc()
		atime := stamp(fsys.AccessTime(e.Info))
		mtime := stamp(e.Info.ModTime())
		if err := op.fs.Chtimes(target, atime, mtime); err != nil {
			return newError("utimes", target, err)
		}
	}

	if op.cfg.Verify && e.Type == walk.Regular {
		if err := op.verify(e.Path, target); err != nil {
			return err
		}
	}

	op.stats.AddFilesCopied(1)
	op.stats.AddBytesCopied(n)
	op.copied(e, target, n)
	return nil
}

// transfer writes the contents of e to target and returns the byte count.
// Regular files on the host filesystem go through the kernel fast path.
func (op *Operation) transfer(ctx context.Context, e walk.Entry, target string) (int64, error) {
	src, err := op.fs.Open(e.Path)
	if err != nil {
		return 0, newError("open", e.Path, err)
	}
	defer src.Close()

	dst, err := op.fs.Create(target, fileMode(e.Info).Perm())
	if err != nil {
		return 0, newError("create", target, err)
	}

	var result platform.CopyResult
	srcFile, srcOK := src.(*os.File)
	dstFile, dstOK := dst.(*os.File)
	if srcOK && dstOK && e.Type == walk.Regular && op.limiter == nil {
		result, err = platform.CopyFile(platform.CopyFileParams{
			Src:  srcFile,
			Dst:  dstFile,
			Size: e.Info.Size(),
		})
	} else {
		var r io.Reader = src
		if op.limiter != nil {
			r = newRateLimitedReader(ctx, src, op.limiter)
		}
		result, err = platform.CopyStream(dst, r)
	}
	if err != nil {
		dst.Close()
		return result.BytesWritten, newError("copy", e.Path, err)
	}
	if err := dst.Close(); err != nil {
		return result.BytesWritten, newError("close", target, err)
	}
	return result.BytesWritten, nil
}

func (op *Operation) verify(src, dst string) error {
	srcHash, err := HashFile(op.fs, src, op.cfg.HashAlgo)
	if err != nil {
		return newError("verify", src, err)
	}
	dstHash, err := HashFile(op.fs, dst, op.cfg.HashAlgo)
	if err != nil {
		return newError("verify", dst, err)
	}
	if srcHash != dstHash {
		return newError("verify", dst, ErrChecksumMismatch)
	}
	return nil
}
